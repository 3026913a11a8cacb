// ABOUTME: Local clip cache keyed by clip id
// ABOUTME: Lazily opens its byte store and maps store errors to storage failures
package cache

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shermbites/shermbites-go/internal/clip"
)

// Cache persists clip payloads keyed by clip id.
// Entries are never evicted; the cache grows with the directory.
type Cache struct {
	store  ByteStore
	mu     sync.Mutex
	opened bool
	now    func() time.Time
}

// New creates a cache over store. The store is opened on first access.
func New(store ByteStore) *Cache {
	return &Cache{
		store: store,
		now:   time.Now,
	}
}

// open opens the store once; a failed open is retried on the next access
func (c *Cache) open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return nil
	}
	if err := c.store.Open(); err != nil {
		return fmt.Errorf("%w: open cache: %w", clip.ErrStorage, err)
	}
	c.opened = true
	return nil
}

// Put stores data for id, replacing any previous payload
func (c *Cache) Put(id int64, data []byte) error {
	if err := c.open(); err != nil {
		return err
	}

	entry := Entry{Bytes: data, StoredAt: c.now()}
	if err := c.store.Put(key(id), entry); err != nil {
		return fmt.Errorf("%w: put clip %d: %w", clip.ErrStorage, id, err)
	}
	return nil
}

// Get returns the payload for id; ok is false on a miss
func (c *Cache) Get(id int64) ([]byte, bool, error) {
	entry, ok, err := c.Entry(id)
	if err != nil || !ok {
		return nil, ok, err
	}
	return entry.Bytes, true, nil
}

// Entry returns the full cached entry for id
func (c *Cache) Entry(id int64) (Entry, bool, error) {
	if err := c.open(); err != nil {
		return Entry{}, false, err
	}

	entry, ok, err := c.store.Get(key(id))
	if err != nil {
		return Entry{}, false, fmt.Errorf("%w: get clip %d: %w", clip.ErrStorage, id, err)
	}
	return entry, ok, nil
}

// Exists reports whether id is cached
func (c *Cache) Exists(id int64) (bool, error) {
	_, ok, err := c.Get(id)
	return ok, err
}

// Close closes the underlying store
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil
	}
	c.opened = false
	return c.store.Close()
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}
