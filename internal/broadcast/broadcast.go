// Package broadcast fans the latest value of a stream out to any number of
// subscribers without ever blocking the publisher.
package broadcast

import (
	"context"
	"sync"
)

// Latest holds the current value of a stream and delivers it to subscribers.
//
// Every subscriber owns a one-slot channel. When the subscriber has not yet
// consumed the previous value, the new one replaces it, so a slow reader only
// ever skips intermediate values and always ends up with the latest.
type Latest[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[*subscriber[T]]struct{}
	dropped uint64
	closed  bool
	done    chan struct{}
}

type subscriber[T any] struct {
	ch chan T
}

// New creates a Latest whose current value is initial.
func New[T any](initial T) *Latest[T] {
	return &Latest[T]{
		current: initial,
		subs:    make(map[*subscriber[T]]struct{}),
		done:    make(chan struct{}),
	}
}

// Subscribe returns a channel that first yields the current value and then
// every published value the reader keeps up with. The channel is closed when
// ctx is done or the Latest is closed.
func (l *Latest[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		close(ch)
		return ch
	}
	s := &subscriber[T]{ch: ch}
	s.ch <- l.current
	l.subs[s] = struct{}{}
	l.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			l.unsubscribe(s)
		case <-l.done:
		}
	}()

	return ch
}

func (l *Latest[T]) unsubscribe(s *subscriber[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.subs[s]; ok {
		delete(l.subs, s)
		close(s.ch)
	}
}

// Publish makes v the current value and offers it to every subscriber.
// Publishing after Close is a no-op.
func (l *Latest[T]) Publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.current = v
	for s := range l.subs {
		l.offer(s, v)
	}
}

// offer must be called with l.mu held. Only the publisher sends, so after the
// stale value is drained the slot is free.
func (l *Latest[T]) offer(s *subscriber[T], v T) {
	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
		l.dropped++
	default:
	}
	s.ch <- v
}

// Current returns the latest published value.
func (l *Latest[T]) Current() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Subscribers returns the number of active subscribers.
func (l *Latest[T]) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Dropped returns how many values were overwritten before a subscriber read them.
func (l *Latest[T]) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close closes every subscriber channel. Subsequent subscriptions receive an
// already closed channel.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for s := range l.subs {
		close(s.ch)
	}
	clear(l.subs)
	close(l.done)
}
