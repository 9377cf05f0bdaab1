package eventbus

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrClosed is returned when sending on a closed bus.
var ErrClosed = errors.New("eventbus: closed")

// DefaultBuffer is the channel capacity used by Subscribe.
const DefaultBuffer = 8

// Sender delivers values and blocks until they were accepted.
type Sender[T any] interface {
	Send(ctx context.Context, v T) error
}

type subscriber[T any] struct {
	ch   chan T
	gone chan struct{}
	once sync.Once

	// mu guards ch against being closed while a send is in flight
	mu     sync.RWMutex
	closed bool
}

func (s *subscriber[T]) leave() { s.once.Do(func() { close(s.gone) }) }

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *subscriber[T]) offer(e T) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
	}
}

func (s *subscriber[T]) send(ctx context.Context, e T, done <-chan struct{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- e:
	case <-s.gone:
	case <-done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// TypedBus is a type-safe publish/subscribe bus for events of type T.
type TypedBus[T any] struct {
	mu        sync.RWMutex
	subs      []*subscriber[T]
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewTyped creates a new TypedBus.
func NewTyped[T any]() *TypedBus[T] { return &TypedBus[T]{done: make(chan struct{})} }

// Publish sends the event to all subscribers. Delivery is non-blocking: a
// subscriber whose buffer is full misses the event.
func (b *TypedBus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		s.offer(e)
	}
}

// Send delivers the event to every current subscriber, waiting for each of
// them to accept it. It returns early when ctx is done or the bus is closed.
// A subscriber that unsubscribes while Send waits on it is skipped. The bus
// lock is not held while waiting, so a slow subscriber does not hold up
// Subscribe or Unsubscribe.
func (b *TypedBus[T]) Send(ctx context.Context, e T) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.send(ctx, e, b.done); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers a subscriber and returns its channel.
func (b *TypedBus[T]) Subscribe() <-chan T { return b.SubscribeBuffered(DefaultBuffer) }

// SubscribeBuffered registers a subscriber whose channel holds up to n events.
func (b *TypedBus[T]) SubscribeBuffered(n int) <-chan T {
	if n < 0 {
		n = 0
	}
	s := &subscriber[T]{ch: make(chan T, n), gone: make(chan struct{})}
	b.mu.Lock()
	if b.closed {
		close(s.ch)
	} else {
		b.subs = append(b.subs, s)
	}
	b.mu.Unlock()
	return s.ch
}

// Len returns the number of subscribers.
func (b *TypedBus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *TypedBus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	var found *subscriber[T]
	for i, s := range b.subs {
		if s.ch == sub {
			found = s
			b.subs = slices.Delete(b.subs, i, i+1)
			break
		}
	}
	b.mu.Unlock()
	if found == nil {
		return
	}
	// release a Send blocked on this subscriber, then close once it left
	found.leave()
	found.close()
}

// Close closes the bus and all subscriber channels.
func (b *TypedBus[T]) Close() {
	b.closeOnce.Do(func() { close(b.done) })
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
}
