package app

import (
	"context"
	"sync"
)

// Mailbox is a single-slot hand-off between a producer and one consumer.
// Put never blocks: a value that has not been taken yet is replaced by the new
// one and passed to the drop hook.
type Mailbox[T any] struct {
	mu     sync.Mutex
	item   T
	full   bool
	closed bool
	ready  chan struct{}
	onDrop func(T)
}

// NewMailbox creates an empty Mailbox. onDrop may be nil.
func NewMailbox[T any](onDrop func(T)) *Mailbox[T] {
	return &Mailbox[T]{
		ready:  make(chan struct{}, 1),
		onDrop: onDrop,
	}
}

// Put stores v, superseding any value still waiting. It reports whether a
// waiting value was dropped. Putting into a closed mailbox drops v itself.
func (m *Mailbox[T]) Put(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.drop(v)
		return true
	}

	old, dropped := m.item, m.full
	m.item, m.full = v, true
	m.mu.Unlock()

	if dropped {
		m.drop(old)
	}

	select {
	case m.ready <- struct{}{}:
	default:
	}
	return dropped
}

// Take waits for a value. It returns false when ctx is done or the mailbox is
// closed.
func (m *Mailbox[T]) Take(ctx context.Context) (T, bool) {
	for {
		m.mu.Lock()
		if m.full {
			v := m.item
			var zero T
			m.item, m.full = zero, false
			m.mu.Unlock()
			return v, true
		}
		closed := m.closed
		m.mu.Unlock()

		var zero T
		if closed {
			return zero, false
		}

		select {
		case <-ctx.Done():
			return zero, false
		case <-m.ready:
		}
	}
}

// Close drops any waiting value and wakes a blocked Take.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	old, had := m.item, m.full
	var zero T
	m.item, m.full = zero, false
	m.mu.Unlock()

	if had {
		m.drop(old)
	}
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) drop(v T) {
	if m.onDrop != nil {
		m.onDrop(v)
	}
}
