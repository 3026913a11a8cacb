// ABOUTME: In-memory byte store for tests
// ABOUTME: Mirrors BoltStore semantics without touching disk
package cache

import "sync"

// MemoryStore keeps entries in a map
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	opens   int
	failPut error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Open counts the call; the map is created up front
func (s *MemoryStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	return nil
}

// Put stores a copy of e
func (s *MemoryStore) Put(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failPut != nil {
		return s.failPut
	}

	data := make([]byte, len(e.Bytes))
	copy(data, e.Bytes)
	s.entries[key] = Entry{Bytes: data, StoredAt: e.StoredAt}
	return nil
}

// Get returns a copy of the entry for key
func (s *MemoryStore) Get(key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	data := make([]byte, len(e.Bytes))
	copy(data, e.Bytes)
	return Entry{Bytes: data, StoredAt: e.StoredAt}, true, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }

// FailPuts makes every later Put return err; nil restores normal writes
func (s *MemoryStore) FailPuts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut = err
}

// Len returns the number of entries
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Opens returns how many times Open was called
func (s *MemoryStore) Opens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens
}
