package state

import "sync"

// Store owns one session's ApplicationState. All mutation goes through
// Dispatch; readers get value snapshots, never references into live state.
// The store is created by the application owner and handed to the
// navigation layer and transport by reference — there is no package-level
// singleton.
type Store struct {
	mu    sync.RWMutex
	state ApplicationState
}

// NewStore creates a store with the zero ApplicationState.
func NewStore() *Store {
	return &Store{}
}

// Dispatch runs the reducer on the current state and swaps in the result
// atomically.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, action)
}

// State returns a snapshot of the current state. Collections inside the
// snapshot are shared with the store but treated as immutable by all
// parties (the reducer always produces new containers).
func (s *Store) State() ApplicationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
