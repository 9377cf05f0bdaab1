package powermanager

import (
	"context"

	"github.com/kilianp07/powermanager/core/metrics"
	"github.com/kilianp07/powermanager/core/model"
)

// sendReports delivers the current report of the group to every subscriber.
// It blocks until each destination accepted its report and must only run on
// the group's tracker.
func (m *PowerManager) sendReports(ctx context.Context, t *tracker) {
	key := t.group.Key()
	bounds, ok := m.bounds.Load(key)
	if !ok {
		t.log.Warnf("no bounds for %s, skipping reports", t.group)
		return
	}
	for _, s := range m.subs.snapshot(key) {
		if err := m.deliver(ctx, t.group, s, bounds); err != nil {
			if ctx.Err() != nil {
				return
			}
			t.log.Warnf("report to %s failed: %v", s.channel, err)
		}
	}
}

// sendInitialReport delivers the registration report of one subscription.
// It runs on the run loop, so the wait is bounded by
// Config.InitialReportTimeout.
func (m *PowerManager) sendInitialReport(ctx context.Context, t *tracker, s subscription) {
	bounds, ok := m.bounds.Load(t.group.Key())
	if !ok {
		t.log.Warnf("no bounds for %s, skipping initial report", t.group)
		return
	}
	if d := m.cfg.InitialReportTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := m.deliver(ctx, t.group, s, bounds); err != nil && ctx.Err() != context.Canceled {
		t.log.Warnf("initial report to %s failed: %v", s.channel, err)
	}
}

func (m *PowerManager) deliver(ctx context.Context, group model.BatteryGroup, s subscription, bounds model.PowerMetrics) error {
	report := m.algorithm.GetStatus(group, s.priority, bounds)
	if err := s.sender.Send(ctx, report); err != nil {
		if ctx.Err() != context.Canceled {
			reportErrors.Inc()
		}
		return err
	}
	reportsSent.Inc()
	if rr, ok := m.metrics.(metrics.ReportRecorder); ok {
		if err := rr.RecordReport(report); err != nil {
			m.logger.Errorf("report metrics error: %v", err)
		}
	}
	return nil
}
