package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/powermanager/core/events"
	coremetrics "github.com/kilianp07/powermanager/core/metrics"
	"github.com/kilianp07/powermanager/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records tracker
// lifecycle changes in sink. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.DecisionSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.TrackerRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, ok := ev.(events.TrackerEvent)
				if !ok {
					continue
				}
				c := coremetrics.TrackerChange{Group: e.Group, Action: e.Action, Time: time.Now()}
				if e.Err != nil {
					c.Error = e.Err.Error()
				}
				_ = rec.RecordTracker(c)
			}
		}
	}()
}
