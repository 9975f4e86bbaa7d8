// Package history emulates the browser History API for the console core: a
// stack of {fullPath, routerState} entries with push/replace semantics and
// back/forward movement.
package history

import (
	"sync"

	"github.com/remails/console/model"
)

// Stack is an in-memory history stack. Pushing while not at the top
// truncates the forward entries, matching browser behavior. Safe for
// concurrent use.
type Stack struct {
	mu      sync.Mutex
	entries []model.HistoryEntry
	index   int
}

// NewStack creates an empty history stack.
func NewStack() *Stack {
	return &Stack{index: -1}
}

// Push appends an entry after the current position, discarding any forward
// entries.
func (s *Stack) Push(e model.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries[:s.index+1], e)
	s.index = len(s.entries) - 1
}

// Replace overwrites the current entry, or pushes when the stack is empty.
func (s *Stack) Replace(e model.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 {
		s.entries = append(s.entries, e)
		s.index = 0
		return
	}
	s.entries[s.index] = e
}

// Current returns the entry at the current position.
func (s *Stack) Current() (model.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 {
		return model.HistoryEntry{}, false
	}
	return s.entries[s.index], true
}

// Back moves one entry backward and returns it, or false when already at
// the oldest entry.
func (s *Stack) Back() (model.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index <= 0 {
		return model.HistoryEntry{}, false
	}
	s.index--
	return s.entries[s.index], true
}

// Forward moves one entry forward and returns it, or false when already at
// the newest entry.
func (s *Stack) Forward() (model.HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 || s.index >= len(s.entries)-1 {
		return model.HistoryEntry{}, false
	}
	s.index++
	return s.entries[s.index], true
}

// Snapshot returns a copy of the entries and the current position, for the
// resume cache.
func (s *Stack) Snapshot() ([]model.HistoryEntry, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]model.HistoryEntry, len(s.entries))
	copy(entries, s.entries)
	return entries, s.index
}

// Restore replaces the stack contents with a previously snapshotted state.
// An index outside the entries is clamped.
func (s *Stack) Restore(entries []model.HistoryEntry, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]model.HistoryEntry, len(entries))
	copy(s.entries, entries)
	switch {
	case len(s.entries) == 0:
		s.index = -1
	case index < 0:
		s.index = 0
	case index >= len(s.entries):
		s.index = len(s.entries) - 1
	default:
		s.index = index
	}
}

// Len returns the number of entries in the stack.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
