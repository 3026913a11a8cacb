// ABOUTME: bbolt-backed byte store for durable clip caching
// ABOUTME: One bucket of clips plus a meta bucket holding the schema version
package cache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"
)

var (
	clipsBucket = []byte("clips")
	metaBucket  = []byte("meta")
	versionKey  = []byte("version")
)

// timestampSize is the length of the StoredAt prefix on every value
const timestampSize = 8

// BoltStore persists entries in a bbolt database file
type BoltStore struct {
	path    string
	mu      sync.Mutex
	db      *bolt.DB
	version uint64
}

// NewBoltStore creates a store for the database at path. Nothing is
// touched on disk until Open.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

// Open creates or opens the database. Upgrades only add missing buckets;
// a database written by a newer schema is opened without modification.
func (s *BoltStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	var version uint64
	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(clipsBucket); err != nil {
			return err
		}

		stored := meta.Get(versionKey)
		if stored == nil {
			version = SchemaVersion
			return meta.Put(versionKey, encodeUint64(SchemaVersion))
		}

		version = binary.BigEndian.Uint64(stored)
		if version > SchemaVersion {
			log.Warn("Cache database has a newer schema, leaving it untouched",
				"path", s.path, "stored", version, "known", SchemaVersion)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize cache database: %w", err)
	}

	s.db = db
	s.version = version
	log.Debug("Cache database opened", "path", s.path, "schema", version)

	return nil
}

// Put stores e under key
func (s *BoltStore) Put(key string, e Entry) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	value := make([]byte, timestampSize+len(e.Bytes))
	binary.BigEndian.PutUint64(value, uint64(e.StoredAt.UnixNano()))
	copy(value[timestampSize:], e.Bytes)

	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(clipsBucket).Put([]byte(key), value)
	})
}

// Get returns the entry for key
func (s *BoltStore) Get(key string) (Entry, bool, error) {
	db, err := s.handle()
	if err != nil {
		return Entry{}, false, err
	}

	var (
		entry Entry
		found bool
	)
	err = db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(clipsBucket).Get([]byte(key))
		if value == nil {
			return nil
		}
		if len(value) < timestampSize {
			return fmt.Errorf("corrupt cache entry %q", key)
		}

		found = true
		entry.StoredAt = time.Unix(0, int64(binary.BigEndian.Uint64(value)))
		// bbolt values are only valid inside the transaction
		entry.Bytes = make([]byte, len(value)-timestampSize)
		copy(entry.Bytes, value[timestampSize:])
		return nil
	})
	if err != nil {
		return Entry{}, false, err
	}

	return entry, found, nil
}

// Count returns the number of cached entries
func (s *BoltStore) Count() (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var n int
	err = db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(clipsBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Version returns the schema version recorded in the database
func (s *BoltStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Close closes the database; a later Open reopens it
func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BoltStore) handle() (*bolt.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, fmt.Errorf("cache database is not open")
	}
	return s.db, nil
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
