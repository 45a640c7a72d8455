// Package store provides SQLite persistence for Tourist: pins, their photos,
// and a handful of scalar settings.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/tourist/internal/logging"
)

// ErrNotFound is returned when a pin or photo does not exist.
var ErrNotFound = errors.New("store: not found")

// PersistenceError wraps a failed read or commit. Prior state is intact
// whenever one is returned from a write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	logging.Error("Persistence failed", "op", op, "error", err)
	return &PersistenceError{Op: op, Err: err}
}

// ChangeSet describes a committed mutation. Publish it, don't diff for it.
type ChangeSet struct {
	PinID    string
	Inserted []string
	Deleted  []string
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.Inserted) == 0 && len(c.Deleted) == 0
}

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	// ":memory:" stays private to this Store: one connection, one database.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A transaction holds the only connection, so nothing may touch s.db
	// while a tx is open.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logging.Info("Database initialized", "path", dbPath)
	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pins (
		id TEXT PRIMARY KEY,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS photos (
		pin_id TEXT NOT NULL REFERENCES pins(id) ON DELETE CASCADE,
		photo_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		remote_url TEXT NOT NULL,
		image BLOB,
		position INTEGER NOT NULL,
		hydrated_at DATETIME,
		PRIMARY KEY (pin_id, photo_id)
	);

	CREATE INDEX IF NOT EXISTS idx_photos_position ON photos(pin_id, position);
	CREATE INDEX IF NOT EXISTS idx_pins_coords ON pins(latitude, longitude);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// withTx runs fn in a transaction and commits it. Any error rolls back.
// Caller must hold s.mu for writing.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
