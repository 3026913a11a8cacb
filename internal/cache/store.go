// ABOUTME: Byte store capability interface for the local clip cache
// ABOUTME: Entries carry the raw payload and the time they were stored
package cache

import "time"

// SchemaVersion is the store layout this build writes
const SchemaVersion = 1

// Entry is one cached clip payload
type Entry struct {
	Bytes    []byte
	StoredAt time.Time
}

// ByteStore is a persistent key/value table of clip payloads
type ByteStore interface {
	// Open prepares the store; repeated calls are no-ops
	Open() error

	// Put stores e under key, replacing any previous entry
	Put(key string, e Entry) error

	// Get returns the entry for key; ok is false on a miss
	Get(key string) (e Entry, ok bool, err error)

	// Close releases the store
	Close() error
}
