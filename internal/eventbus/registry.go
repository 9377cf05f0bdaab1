package eventbus

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// Registry hands out named channels. Every name maps to one TypedBus, created
// on first use, so senders and receivers only need to agree on the name.
type Registry[T any] struct {
	buses  *xsync.Map[string, *TypedBus[T]]
	closed atomic.Bool
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{buses: xsync.NewMap[string, *TypedBus[T]]()}
}

func (r *Registry[T]) bus(name string) *TypedBus[T] {
	if b, ok := r.buses.Load(name); ok {
		return b
	}
	b, _ := r.buses.LoadOrStore(name, NewTyped[T]())
	if r.closed.Load() {
		b.Close()
	}
	return b
}

// Sender returns the sending side of the named channel.
func (r *Registry[T]) Sender(name string) Sender[T] { return r.bus(name) }

// Receiver attaches a new receiver with a buffer of n values to the named channel.
func (r *Registry[T]) Receiver(name string, n int) <-chan T {
	return r.bus(name).SubscribeBuffered(n)
}

// Release detaches a receiver previously returned by Receiver.
func (r *Registry[T]) Release(name string, ch <-chan T) {
	if b, ok := r.buses.Load(name); ok {
		b.Unsubscribe(ch)
	}
}

// Len returns the number of named channels.
func (r *Registry[T]) Len() int { return r.buses.Size() }

// Close closes every channel. Channels requested afterwards are born closed.
func (r *Registry[T]) Close() {
	r.closed.Store(true)
	r.buses.Range(func(_ string, b *TypedBus[T]) bool {
		b.Close()
		return true
	})
}
