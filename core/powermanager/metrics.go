package powermanager

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	proposalsTotal   *prometheus.CounterVec
	reportsSent      prometheus.Counter
	reportErrors     prometheus.Counter
	boundsUpdates    prometheus.Counter
	trackersActive   prometheus.Gauge
	subscriptions    prometheus.Gauge
	outboxDropped    prometheus.Counter
	actuationErrors  prometheus.Counter
	targetPowerWatts *prometheus.GaugeVec
)

type collectors struct {
	proposals   *prometheus.CounterVec
	reports     prometheus.Counter
	reportErrs  prometheus.Counter
	bounds      prometheus.Counter
	trackers    prometheus.Gauge
	subs        prometheus.Gauge
	dropped     prometheus.Counter
	actuateErrs prometheus.Counter
	target      *prometheus.GaugeVec
}

// newCollectors creates new metric collectors.
func newCollectors() collectors {
	return collectors{
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "power_manager_proposals_total",
			Help: "Number of proposals handled, by outcome",
		}, []string{"outcome"}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "power_manager_reports_sent_total",
			Help: "Number of reports delivered to subscribers",
		}),
		reportErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "power_manager_report_errors_total",
			Help: "Number of reports that could not be delivered",
		}),
		bounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "power_manager_bounds_updates_total",
			Help: "Number of bounds updates applied to the cache",
		}),
		trackers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "power_manager_bounds_trackers",
			Help: "Number of running bounds trackers",
		}),
		subs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "power_manager_subscriptions",
			Help: "Number of registered (group, priority) report subscriptions",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "power_manager_outbox_dropped_total",
			Help: "Number of actuation requests superseded before being sent",
		}),
		actuateErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "power_manager_actuation_errors_total",
			Help: "Number of actuation requests the actuator rejected",
		}),
		target: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "power_manager_target_power_watts",
			Help: "Last arbitrated target power per battery group",
		}, []string{"group"}),
	}
}

func (c collectors) install() {
	proposalsTotal, reportsSent, reportErrors = c.proposals, c.reports, c.reportErrs
	boundsUpdates, trackersActive, subscriptions = c.bounds, c.trackers, c.subs
	outboxDropped, actuationErrors, targetPowerWatts = c.dropped, c.actuateErrs, c.target
}

func init() {
	newCollectors().install()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers power manager metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(proposalsTotal, reportsSent, reportErrors, boundsUpdates,
		trackersActive, subscriptions, outboxDropped, actuationErrors, targetPowerWatts)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors().install()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
