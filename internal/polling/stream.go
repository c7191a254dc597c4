package polling

import (
	"sync"
)

// Update is one observation of a Stream. Present is false when the stream
// has been reset to absent.
type Update[T any] struct {
	Value   T
	Present bool
}

// Stream holds the latest value of T and pushes it to subscribers.
//
// Each subscriber gets a channel with room for one update. A slow
// subscriber only ever sees the most recent update; older undelivered ones
// are dropped. Publishing never blocks.
type Stream[T any] struct {
	mu        sync.Mutex
	latest    Update[T]
	published bool
	closed    bool
	nextID    uint64
	subs      map[uint64]chan Update[T]
}

// NewStream creates an empty stream
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[uint64]chan Update[T])}
}

// Publish sets the latest value and delivers it to every subscriber
func (s *Stream[T]) Publish(value T) {
	s.set(Update[T]{Value: value, Present: true})
}

// Reset sets the stream to absent, so later subscribers do not see stale data
func (s *Stream[T]) Reset() {
	s.set(Update[T]{})
}

func (s *Stream[T]) set(u Update[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.latest = u
	s.published = true
	for _, ch := range s.subs {
		deliver(ch, u)
	}
}

// Latest returns the current value, ok is false when absent
func (s *Stream[T]) Latest() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest.Value, s.latest.Present
}

// Subscribe registers a subscriber. If anything has been published the
// current state is delivered right away. The returned func unsubscribes
// and closes the channel; calling it more than once is safe.
func (s *Stream[T]) Subscribe() (<-chan Update[T], func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Update[T], 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	if s.published {
		ch <- s.latest
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Close closes every subscriber channel. Publishing after Close is a no-op.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// deliver replaces any undelivered update in ch with u.
// Callers hold the stream lock, so ch has no other sender.
func deliver[T any](ch chan Update[T], u Update[T]) {
	select {
	case <-ch:
	default:
	}
	ch <- u
}
