package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/powermanager/core/metrics"
	"github.com/kilianp07/powermanager/core/model"
)

// PromSink records power manager decisions in Prometheus metrics.
type PromSink struct {
	decisions *prometheus.CounterVec
	requested *prometheus.GaugeVec
	reports   *prometheus.CounterVec
	lower     *prometheus.GaugeVec
	upper     *prometheus.GaugeVec
	trackers  *prometheus.CounterVec
}

// NewPromSink registers the sink metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "power_decisions_total",
			Help: "Total number of arbitrated proposals",
		}, []string{"group", "source"}),
		requested: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "power_proposal_watts",
			Help: "Last proposed power per group and source",
		}, []string{"group", "source"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "power_reports_total",
			Help: "Total number of reports delivered per group and priority",
		}, []string{"group", "priority"}),
		lower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "power_bounds_lower_watts",
			Help: "Last inclusion lower bound per group",
		}, []string{"group"}),
		upper: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "power_bounds_upper_watts",
			Help: "Last inclusion upper bound per group",
		}, []string{"group"}),
		trackers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "power_tracker_events_total",
			Help: "Bounds tracker lifecycle changes by action",
		}, []string{"action"}),
	}
	var err error
	if s.decisions, err = register(reg, s.decisions); err != nil {
		return nil, err
	}
	if s.requested, err = register(reg, s.requested); err != nil {
		return nil, err
	}
	if s.reports, err = register(reg, s.reports); err != nil {
		return nil, err
	}
	if s.lower, err = register(reg, s.lower); err != nil {
		return nil, err
	}
	if s.upper, err = register(reg, s.upper); err != nil {
		return nil, err
	}
	if s.trackers, err = register(reg, s.trackers); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// RecordDecision counts the decision and keeps the proposed power.
func (s *PromSink) RecordDecision(d coremetrics.Decision) error {
	group, source := d.Proposal.Group.Key(), d.Proposal.SourceKey()
	s.decisions.WithLabelValues(group, source).Inc()
	s.requested.WithLabelValues(group, source).Set(d.Proposal.Power)
	return nil
}

// RecordReport counts a delivered report.
func (s *PromSink) RecordReport(r model.Report) error {
	s.reports.WithLabelValues(r.Group.Key(), strconv.Itoa(r.Priority)).Inc()
	return nil
}

// RecordBounds keeps the last inclusion bounds of the group.
func (s *PromSink) RecordBounds(u coremetrics.BoundsUpdate) error {
	s.lower.WithLabelValues(u.Group.Key()).Set(u.Metrics.Inclusion.Lower)
	s.upper.WithLabelValues(u.Group.Key()).Set(u.Metrics.Inclusion.Upper)
	return nil
}

// RecordTracker counts tracker lifecycle changes.
func (s *PromSink) RecordTracker(c coremetrics.TrackerChange) error {
	s.trackers.WithLabelValues(c.Action).Inc()
	return nil
}
