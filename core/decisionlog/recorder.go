package decisionlog

import (
	"context"
	"time"

	"github.com/kilianp07/powermanager/core/events"
	"github.com/kilianp07/powermanager/core/logger"
	"github.com/kilianp07/powermanager/internal/eventbus"
)

const appendTimeout = 2 * time.Second

// StartRecorder subscribes to the event bus and appends every decision to
// store. It stops when the context is canceled or the bus is closed; the
// returned channel is closed once it did.
func StartRecorder(ctx context.Context, bus *eventbus.TypedBus[events.Event], store LogStore, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
		close(done)
		return done
	}
	sub := bus.SubscribeBuffered(64)
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				d, ok := ev.(events.DecisionEvent)
				if !ok {
					continue
				}
				rec := LogRecord{
					Timestamp:   d.Time,
					Proposal:    d.Proposal,
					Bounds:      d.Bounds,
					TargetPower: d.TargetPower,
					Request:     d.Request,
				}
				actx, cancel := context.WithTimeout(ctx, appendTimeout)
				if err := store.Append(actx, rec); err != nil && log != nil {
					log.Errorf("decision log append failed: %v", err)
				}
				cancel()
			}
		}
	}()
	return done
}
