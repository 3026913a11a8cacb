// ABOUTME: Concurrency-safe set of downloaded clip ids
// ABOUTME: Tracks which clips are present in the local cache
package clip

import "sync"

// Set is a concurrency-safe set of clip ids
type Set struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{ids: make(map[int64]struct{})}
}

// Add marks id present
func (s *Set) Add(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

// Has reports whether id is present
func (s *Set) Has(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of ids
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
