package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS descriptions (
	fingerprint TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
`

// SQLiteStore is the alternative cache backend for large projects where
// rewriting a whole JSON file per flush gets expensive. Same contract
// as FileStore; the database file is the single durable artifact.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// OpenSQLiteStore opens or creates a SQLite-backed cache at path
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Single writer suits SQLite; WAL keeps concurrent readers cheap
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get implements Store. Read errors degrade to a miss.
func (s *SQLiteStore) Get(fingerprint string) (string, bool) {
	var description string
	err := s.db.QueryRow(
		"SELECT description FROM descriptions WHERE fingerprint = ?", fingerprint,
	).Scan(&description)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.misses.Add(1)
		return "", false
	case err != nil:
		s.logger.Warn("cache read failed, treating as miss", "error", err)
		s.misses.Add(1)
		return "", false
	}

	s.hits.Add(1)
	return description, true
}

// Put implements Store. Last write wins on conflict.
func (s *SQLiteStore) Put(fingerprint, description string) {
	_, err := s.db.Exec(`
		INSERT INTO descriptions (fingerprint, description, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			description = excluded.description,
			created_at  = excluded.created_at`,
		fingerprint, description, time.Now().UTC(),
	)
	if err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
}

// Stats implements Store
func (s *SQLiteStore) Stats() Stats {
	var entries int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM descriptions").Scan(&entries); err != nil {
		s.logger.Warn("cache count failed", "error", err)
	}
	return Stats{
		Entries: entries,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
}

// Clear implements Store
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM descriptions"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Flush implements Store. SQLite commits synchronously; nothing pends.
func (s *SQLiteStore) Flush() error {
	return nil
}

// Close implements Store
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
