package state

import (
	"context"
	"sync"
)

// Listener observes a transition. It runs after the store lock is released,
// so it may dispatch further actions.
type Listener func(ctx context.Context, prev, next State)

type subscription struct {
	id int
	fn Listener
}

// Store owns one State and applies actions one at a time.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []subscription
	nextID    int
}

// NewStore returns a store seeded with Initial().
func NewStore() *Store {
	return NewStoreWith(Initial())
}

// NewStoreWith returns a store seeded with s.
func NewStoreWith(s State) *Store {
	return &Store{state: s}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a into the state and then notifies listeners in
// subscription order.
func (s *Store) Dispatch(ctx context.Context, a Action) {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(ctx, prev, next)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
