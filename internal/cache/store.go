// Package cache persists generated descriptions keyed by fingerprint.
//
// The store is the cost-saving layer of the pipeline: an entry is
// created on the first successful generation for a fingerprint and read
// on every later lookup with the same key. Entries are never mutated in
// place and never expire automatically; clearing the store is the only
// invalidation.
//
// Get never fails from the caller's point of view: a storage read error
// is logged and reported as a miss, and enrichment simply regenerates.
package cache

import "time"

// Entry is one persisted description
type Entry struct {
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats is a point-in-time snapshot of store counters. Hits and misses
// are process-wide and incremented atomically by concurrent callers.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Store is the persistence contract shared by the JSON file store and
// the SQLite store. Implementations must be safe for concurrent use;
// concurrent Put for the same fingerprint is last-write-wins, which is
// safe because descriptions for one fingerprint are equivalent.
type Store interface {
	// Get returns the cached description for a fingerprint. A storage
	// failure is reported as a miss, never as an error.
	Get(fingerprint string) (string, bool)

	// Put stores a description. Idempotent; overwrites wholesale.
	Put(fingerprint, description string)

	// Stats returns current counters
	Stats() Stats

	// Clear drops every entry, in memory and on disk
	Clear() error

	// Flush forces pending writes to durable storage
	Flush() error

	// Close flushes and releases resources
	Close() error
}
