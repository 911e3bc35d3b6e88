// Package store implements the embedded vector/table store adapter
// consumed by the work-item and search engines (spec §6.2). Each Store
// instance owns exactly one namespace's isolated sqlite file.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a single namespace's sqlite database: work items, execution
// log, and retry-with-backoff write serialization (spec §5).
type Store struct {
	db       *sql.DB
	embedder Embedder
	path     string

	// writeMu serialises writes to the same namespace's file, matching
	// spec §5 ("writes to the same work_item_id must be serialised by the
	// store adapter"). sqlite itself single-writers this already, but the
	// mutex lets us implement the retry/backoff policy at a layer we
	// control instead of parsing driver-specific "database is locked"
	// errors.
	writeMu sync.Mutex
}

// Connect opens (creating if missing) the sqlite file at
// <root>/jive.db and ensures the schema is current.
func Connect(root string, embedder Embedder) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create namespace root %s: %w", root, err)
	}
	dbPath := filepath.Join(root, "jive.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one writer connection avoids lock storms

	s := &Store{db: db, embedder: embedder, path: dbPath}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Embed delegates to the configured embedder (spec §6.2).
func (s *Store) Embed(text string) ([]float32, error) { return s.embedder.Embed(text) }

// Path returns the sqlite file path backing this store.
func (s *Store) Path() string { return s.path }

// withRetry runs fn up to 3 attempts with exponential backoff, matching
// spec §5's "optimistic retry with exponential backoff, max 3 attempts".
func withRetry(fn func() error) error {
	var err error
	backoff := 10 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

// Embedder computes a fixed-length vector for a piece of text (spec §1,
// "embedding model ... a pure function embed(text) -> fixed-length float
// vector"). Grounded on the teacher's apps/cli/internal/memory.Embedder
// interface shape.
type Embedder interface {
	Embed(text string) ([]float32, error)
	Model() string
	Dimensions() int
}
