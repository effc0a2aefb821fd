// Package stream provides the live subscription primitive behind
// StreamContributions: a restartable snapshot stream with an explicit
// cancellation contract. Producers push full snapshots; consumers range over
// Updates until they Cancel (or the producer closes the stream).
package stream

import "sync"

// Stream delivers successive snapshots of T. Delivery is latest-wins: when
// the consumer lags, a newer snapshot replaces the queued one, so the
// consumer always observes a consistent recent state rather than a backlog.
type Stream[T any] struct {
	updates chan T
	stop    chan struct{}
	once    sync.Once
}

// New creates an open stream.
func New[T any]() *Stream[T] {
	return &Stream[T]{
		updates: make(chan T, 1),
		stop:    make(chan struct{}),
	}
}

// Updates returns the snapshot channel. It is never closed; select on Done
// to observe cancellation.
func (s *Stream[T]) Updates() <-chan T {
	return s.updates
}

// Done is closed when the stream has been cancelled.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.stop
}

// Cancel releases the subscription. Safe to call more than once and
// concurrently with Push.
func (s *Stream[T]) Cancel() {
	s.once.Do(func() { close(s.stop) })
}

// Push queues a snapshot, replacing any undelivered one. Pushing to a
// cancelled stream is a no-op.
func (s *Stream[T]) Push(snapshot T) {
	for {
		select {
		case <-s.stop:
			return
		case s.updates <- snapshot:
			return
		default:
		}
		// Queue full: drop the stale snapshot and retry.
		select {
		case <-s.updates:
		default:
		}
	}
}
