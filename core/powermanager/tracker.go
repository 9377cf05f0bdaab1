package powermanager

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/powermanager/core/events"
	"github.com/kilianp07/powermanager/core/logger"
	"github.com/kilianp07/powermanager/core/metrics"
	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/core/monitoring"
)

// tracker keeps the bounds of one battery group current.
type tracker struct {
	group   model.BatteryGroup
	updates <-chan model.PowerMetrics
	cancel  context.CancelFunc
	log     logger.Logger

	// refresh asks the tracker for a fanout outside of bounds updates
	refresh chan struct{}
}

// requestFanout marks the group's reports as stale. It never blocks; pending
// requests coalesce into one fanout.
func (t *tracker) requestFanout() {
	select {
	case t.refresh <- struct{}{}:
	default:
	}
}

// ensureTracker returns the tracker of the group, creating it on first use.
// Creation waits for the first bounds value so the cache holds an entry for
// the group when it returns. Must only be called from the run loop.
func (m *PowerManager) ensureTracker(ctx context.Context, rs *runState, group model.BatteryGroup) (*tracker, error) {
	key := group.Key()
	if t, ok := rs.trackers[key]; ok {
		return t, nil
	}

	tctx, cancel := context.WithCancel(ctx)
	updates, err := m.source.Subscribe(tctx, group)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe bounds %s: %w", group, err)
	}
	first, err := m.firstBounds(tctx, group, updates)
	if err != nil {
		cancel()
		return nil, err
	}
	m.bounds.Store(key, first)

	t := &tracker{
		group:   group,
		updates: updates,
		cancel:  cancel,
		log:     m.logger.With(map[string]any{"group": key}),
		refresh: make(chan struct{}, 1),
	}
	rs.trackers[key] = t
	m.trackerCount.Add(1)
	trackersActive.Inc()
	rs.group.Go(func() error { return m.track(tctx, t) })

	t.log.Infof("bounds tracker started")
	m.publish(events.TrackerEvent{Group: group, Action: "started"})
	return t, nil
}

func (m *PowerManager) firstBounds(ctx context.Context, group model.BatteryGroup, updates <-chan model.PowerMetrics) (model.PowerMetrics, error) {
	var timeout <-chan time.Time
	if d := m.cfg.FirstBoundsTimeout(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case b, ok := <-updates:
		if !ok {
			return model.PowerMetrics{}, fmt.Errorf("first bounds of %s: %w", group, ErrFeedClosed)
		}
		return b, nil
	case <-timeout:
		return model.PowerMetrics{}, fmt.Errorf("first bounds of %s: %w", group, ErrNoBounds)
	case <-ctx.Done():
		return model.PowerMetrics{}, ctx.Err()
	}
}

// track applies every bounds update of the group and fans the reports out.
// It is the only goroutine delivering fanouts of the group, so a stalled
// subscriber holds back this group alone. A feed that closes while ctx is
// active is fatal.
func (m *PowerManager) track(ctx context.Context, t *tracker) error {
	defer monitoring.Guard("powermanager")
	defer t.cancel()
	defer trackersActive.Dec()
	key := t.group.Key()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.refresh:
			m.sendReports(ctx, t)
		case b, ok := <-t.updates:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				err := fmt.Errorf("bounds feed of %s: %w", t.group, ErrFeedClosed)
				t.log.Errorf("bounds tracker stopped: %v", err)
				monitoring.CaptureException(err, map[string]string{"module": "powermanager", "group": key})
				m.publish(events.TrackerEvent{Group: t.group, Action: "failed", Err: err})
				return err
			}
			m.bounds.Store(key, b)
			boundsUpdates.Inc()
			if br, ok := m.metrics.(metrics.BoundsRecorder); ok {
				if err := br.RecordBounds(metrics.BoundsUpdate{Group: t.group, Metrics: b}); err != nil {
					t.log.Errorf("bounds metrics error: %v", err)
				}
			}
			m.sendReports(ctx, t)
		}
	}
}
