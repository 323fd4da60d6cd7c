package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFlushEvery is the number of writes between periodic flushes.
// A crash loses at most the last batch, not the whole run.
const DefaultFlushEvery = 25

// FileStore is the default cache backend: a single JSON file mapping
// fingerprint to entry, loaded fully into memory at open and flushed
// back on Close and every flushEvery writes.
//
// The on-disk format is forward-compatible: unknown fields in an entry
// are ignored on load.
type FileStore struct {
	path       string
	flushEvery int
	logger     *slog.Logger

	mu         sync.RWMutex
	entries    map[string]Entry
	dirtyPuts  int
	hits       atomic.Int64
	misses     atomic.Int64
}

// FileStoreOption configures a FileStore
type FileStoreOption func(*FileStore)

// WithFlushEvery overrides the periodic flush interval in writes
func WithFlushEvery(n int) FileStoreOption {
	return func(s *FileStore) {
		if n > 0 {
			s.flushEvery = n
		}
	}
}

// WithLogger overrides the store's logger
func WithLogger(l *slog.Logger) FileStoreOption {
	return func(s *FileStore) { s.logger = l }
}

// OpenFileStore loads (or starts) a cache file. A missing file starts
// an empty cache; an unreadable or corrupt file is logged and treated
// the same way, since the cache can always be regenerated.
func OpenFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	s := &FileStore{
		path:       path,
		flushEvery: DefaultFlushEvery,
		logger:     slog.Default(),
		entries:    make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run
	case err != nil:
		s.logger.Warn("cache file unreadable, starting empty", "path", path, "error", err)
	default:
		if err := json.Unmarshal(data, &s.entries); err != nil {
			s.logger.Warn("cache file corrupt, starting empty", "path", path, "error", err)
			s.entries = make(map[string]Entry)
		}
	}

	s.logger.Debug("cache loaded", "path", path, "entries", len(s.entries))
	return s, nil
}

// Get implements Store
func (s *FileStore) Get(fingerprint string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.entries[fingerprint]
	s.mu.RUnlock()

	if !ok {
		s.misses.Add(1)
		return "", false
	}
	s.hits.Add(1)
	return entry.Description, true
}

// Put implements Store. Flushes to disk after every flushEvery writes.
func (s *FileStore) Put(fingerprint, description string) {
	s.mu.Lock()
	s.entries[fingerprint] = Entry{
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	s.dirtyPuts++
	flush := s.dirtyPuts >= s.flushEvery
	if flush {
		s.dirtyPuts = 0
	}
	s.mu.Unlock()

	if flush {
		if err := s.Flush(); err != nil {
			s.logger.Warn("periodic cache flush failed", "error", err)
		}
	}
}

// Stats implements Store
func (s *FileStore) Stats() Stats {
	s.mu.RLock()
	entries := len(s.entries)
	s.mu.RUnlock()
	return Stats{
		Entries: entries,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
}

// Clear implements Store
func (s *FileStore) Clear() error {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.dirtyPuts = 0
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Flush implements Store. The file is written whole via a temp file and
// rename so readers never observe a torn cache.
func (s *FileStore) Flush() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ladoc-cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Close implements Store
func (s *FileStore) Close() error {
	return s.Flush()
}
