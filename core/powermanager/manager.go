package powermanager

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/powermanager/core/events"
	"github.com/kilianp07/powermanager/core/logger"
	"github.com/kilianp07/powermanager/core/metrics"
	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/core/monitoring"
	"github.com/kilianp07/powermanager/internal/eventbus"
)

// PowerManager arbitrates the proposals of battery groups and reports the
// outcome to subscribers.
type PowerManager struct {
	cfg       Config
	algorithm Algorithm
	source    BoundsSource
	actuator  Actuator
	reports   ReportRegistry
	logger    logger.Logger
	metrics   metrics.DecisionSink
	bus       *eventbus.TypedBus[events.Event]

	bounds       *xsync.Map[string, model.PowerMetrics]
	subs         *subscriptionTable
	outbox       *outbox
	trackerCount atomic.Int64
	running      atomic.Bool
}

// runState is owned by the run loop.
type runState struct {
	group    *errgroup.Group
	trackers map[string]*tracker
}

// NewPowerManager creates a new manager. sink and bus are optional, log
// defaults to a no-op logger.
func NewPowerManager(cfg Config, source BoundsSource, actuator Actuator, reports ReportRegistry, sink metrics.DecisionSink, bus *eventbus.TypedBus[events.Event], log logger.Logger) (*PowerManager, error) {
	if source == nil || actuator == nil || reports == nil {
		return nil, fmt.Errorf("powermanager: nil parameter provided to NewPowerManager")
	}
	cfg.SetDefaults()
	algo, err := NewAlgorithm(cfg.Algorithm, cfg.AlgorithmConf)
	if err != nil {
		return nil, fmt.Errorf("powermanager: %w", err)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &PowerManager{
		cfg:       cfg,
		algorithm: algo,
		source:    source,
		actuator:  actuator,
		reports:   reports,
		logger:    log,
		metrics:   sink,
		bus:       bus,
		bounds:    xsync.NewMap[string, model.PowerMetrics](),
		subs:      newSubscriptionTable(),
		outbox:    newOutbox(cfg.OutboxSize),
	}, nil
}

// Algorithm returns the arbitration algorithm in use.
func (m *PowerManager) Algorithm() Algorithm { return m.algorithm }

// Bounds returns the cached bounds of a group.
func (m *PowerManager) Bounds(group model.BatteryGroup) (model.PowerMetrics, bool) {
	return m.bounds.Load(group.Key())
}

// Trackers returns the number of bounds trackers started so far.
func (m *PowerManager) Trackers() int { return int(m.trackerCount.Load()) }

// Subscriptions returns the number of registered (group, priority) pairs.
func (m *PowerManager) Subscriptions() int { return m.subs.len() }

// Run processes proposals and report requests one at a time until ctx is
// canceled or a bounds feed fails. When both streams have pending events
// they are handled alternately. Run returns nil on cancellation.
func (m *PowerManager) Run(ctx context.Context, proposals <-chan model.Proposal, requests <-chan model.ReportRequest) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer m.running.Store(false)

	g, gctx := errgroup.WithContext(ctx)
	rs := &runState{group: g, trackers: make(map[string]*tracker)}
	g.Go(func() error {
		m.outbox.drain(gctx, m.actuate)
		return nil
	})
	g.Go(func() error {
		m.loop(gctx, rs, proposals, requests)
		return nil
	})
	err := g.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (m *PowerManager) loop(ctx context.Context, rs *runState, proposals <-chan model.Proposal, requests <-chan model.ReportRequest) {
	defer monitoring.Guard("powermanager")
	preferRequests := false
	for {
		if proposals == nil && requests == nil {
			<-ctx.Done()
			return
		}
		if preferRequests {
			select {
			case r, ok := <-requests:
				if !ok {
					requests = nil
					continue
				}
				m.handleReportRequest(ctx, rs, r)
				preferRequests = false
				continue
			default:
			}
		} else {
			select {
			case p, ok := <-proposals:
				if !ok {
					proposals = nil
					continue
				}
				m.handleProposal(ctx, rs, p)
				preferRequests = true
				continue
			default:
			}
		}
		select {
		case <-ctx.Done():
			return
		case p, ok := <-proposals:
			if !ok {
				proposals = nil
				continue
			}
			m.handleProposal(ctx, rs, p)
			preferRequests = true
		case r, ok := <-requests:
			if !ok {
				requests = nil
				continue
			}
			m.handleReportRequest(ctx, rs, r)
			preferRequests = false
		}
	}
}

func (m *PowerManager) handleProposal(ctx context.Context, rs *runState, p model.Proposal) {
	if err := p.Validate(); err != nil {
		proposalsTotal.WithLabelValues("invalid").Inc()
		m.logger.Warnf("dropping invalid proposal from %s: %v", p.SourceKey(), err)
		return
	}
	t, err := m.ensureTracker(ctx, rs, p.Group)
	if err != nil {
		if ctx.Err() == nil {
			proposalsTotal.WithLabelValues("no_bounds").Inc()
			m.logger.Errorf("dropping proposal for %s: %v", p.Group, err)
		}
		return
	}
	bounds, _ := m.bounds.Load(p.Group.Key())
	target := m.algorithm.HandleProposal(p, bounds)
	req := model.Request{
		Power:          target,
		Group:          p.Group,
		RequestTimeout: p.RequestTimeout,
		AdjustPower:    true,
		IncludeBroken:  p.IncludeBroken,
	}
	if dropped, evicted := m.outbox.push(req); evicted {
		outboxDropped.Inc()
		m.logger.Warnf("actuation queue full, superseded request of %.1f W for %s", dropped.Power, dropped.Group)
		m.publish(events.RequestDroppedEvent{Request: dropped})
	}
	proposalsTotal.WithLabelValues("accepted").Inc()
	targetPowerWatts.WithLabelValues(p.Group.Key()).Set(target)
	m.logger.Debugw("proposal arbitrated", map[string]any{
		"group":    p.Group.Key(),
		"source":   p.SourceKey(),
		"priority": p.Priority,
		"power":    p.Power,
		"target":   target,
	})

	now := time.Now()
	if err := m.metrics.RecordDecision(metrics.Decision{Proposal: p, Bounds: bounds, TargetPower: target, Request: req, Time: now}); err != nil {
		m.logger.Errorf("decision metrics error: %v", err)
	}
	m.publish(events.DecisionEvent{Proposal: p, Bounds: bounds, TargetPower: target, Request: req, Time: now})
	t.requestFanout()
}

func (m *PowerManager) handleReportRequest(ctx context.Context, rs *runState, r model.ReportRequest) {
	if r.Group.IsZero() {
		m.logger.Warnf("dropping report request from %s without batteries", r.SourceID)
		return
	}
	name := r.ChannelName()
	sub := subscription{
		priority: r.Priority,
		channel:  name,
		sender:   m.reports.Sender(name),
	}
	existed := m.subs.set(r.Group.Key(), sub)
	if !existed {
		subscriptions.Inc()
		m.logger.Infof("report subscription %s registered", name)
	}
	t, err := m.ensureTracker(ctx, rs, r.Group)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Errorf("no initial report for %s: %v", name, err)
		}
		return
	}
	m.sendInitialReport(ctx, t, sub)
}

func (m *PowerManager) actuate(ctx context.Context, req model.Request) {
	if err := m.actuator.Distribute(ctx, req); err != nil {
		if ctx.Err() != nil {
			return
		}
		actuationErrors.Inc()
		m.logger.Errorf("actuation of %.1f W for %s failed: %v", req.Power, req.Group, err)
		monitoring.CaptureException(err, map[string]string{"module": "powermanager", "group": req.Group.Key()})
	}
}

func (m *PowerManager) publish(e events.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)               {}
func (nopLogger) Debugw(string, map[string]any)       {}
func (nopLogger) Infof(string, ...any)                {}
func (nopLogger) Warnf(string, ...any)                {}
func (nopLogger) Errorf(string, ...any)               {}
func (l nopLogger) With(map[string]any) logger.Logger { return l }
