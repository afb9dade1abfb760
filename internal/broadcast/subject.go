// Package broadcast provides a replay-last value subject: subscribers receive
// the current value on subscription and every later write, in write order.
package broadcast

import "sync"

// Subject holds a value of type T and fans every change out to subscribers.
//
// Callbacks run synchronously on the goroutine that performed the write and
// must not call Set, Update or Subscribe on the same Subject. Get is safe.
type Subject[T any] struct {
	deliverMu sync.Mutex // serialises write+delivery so ordering is preserved

	mu     sync.RWMutex
	value  T
	subs   []subscriber[T]
	nextID uint64
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// New creates a Subject holding initial.
func New[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value: initial,
	}
}

// Get returns the latest value.
func (s *Subject[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Subject[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update applies fn to the current value, stores the result and notifies
// subscribers. The new value is returned.
func (s *Subject[T]) Update(fn func(current T) T) T {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.value = fn(s.value)
	value := s.value
	subs := s.snapshotLocked()
	s.mu.Unlock()

	for _, cb := range subs {
		cb(value)
	}
	return value
}

// Subscribe registers fn and immediately replays the current value to it.
// The returned function removes the subscription; calling it more than once is safe.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	value := s.value
	s.mu.Unlock()

	fn(value)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// snapshotLocked returns subscribers in registration order.
func (s *Subject[T]) snapshotLocked() []func(T) {
	subs := make([]func(T), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub.fn)
	}
	return subs
}
