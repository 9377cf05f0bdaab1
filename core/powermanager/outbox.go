package powermanager

import (
	"context"

	"github.com/kilianp07/powermanager/core/model"
)

// outbox decouples the run loop from the actuator. Pushing never blocks:
// when the queue is full the oldest request is discarded, a newer target
// supersedes an older one.
type outbox struct {
	queue chan model.Request
}

func newOutbox(size int) *outbox {
	if size <= 0 {
		size = defaultOutboxSize
	}
	return &outbox{queue: make(chan model.Request, size)}
}

// push enqueues req and returns the request it evicted, if any. The run loop
// is the only producer.
func (o *outbox) push(req model.Request) (model.Request, bool) {
	var (
		dropped model.Request
		evicted bool
	)
	for {
		select {
		case o.queue <- req:
			return dropped, evicted
		default:
		}
		select {
		case dropped = <-o.queue:
			evicted = true
		default:
		}
	}
}

// drain forwards queued requests to send until ctx is done.
func (o *outbox) drain(ctx context.Context, send func(context.Context, model.Request)) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-o.queue:
			send(ctx, req)
		}
	}
}
