// Package store holds application state behind a pure reducer.
//
// A Store is owned by whoever creates it and is passed explicitly to the
// code that dispatches into it. Dispatch is safe for concurrent use:
// transitions are applied one at a time, and subscribers are notified with
// the resulting snapshot after the lock is released.
package store

import "sync"

// Reducer maps a state and an action to the next state. It must not mutate
// its input.
type Reducer[S, A any] func(S, A) S

// Store is a state container for a single reducer.
type Store[S, A any] struct {
	mu      sync.Mutex
	state   S
	reduce  Reducer[S, A]
	subs    map[int]func(S)
	nextSub int
}

// New creates a Store starting from initial.
func New[S, A any](initial S, reduce Reducer[S, A]) *Store[S, A] {
	return &Store[S, A]{
		state:  initial,
		reduce: reduce,
		subs:   make(map[int]func(S)),
	}
}

// State returns the current snapshot.
func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action and returns the resulting state.
func (s *Store[S, A]) Dispatch(action A) S {
	s.mu.Lock()
	s.state = s.reduce(s.state, action)
	next := s.state
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn to be called after every Dispatch. The returned
// function removes the subscription.
func (s *Store[S, A]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
