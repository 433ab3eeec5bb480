// Package store persists boards, columns, cards and memberships and owns
// every ordering transaction. Positions are kept dense (0..n-1 per
// container) by renumbering siblings inside the same transaction as the
// triggering insert, delete or move; concurrent requests are serialized
// only by the database transaction, never by an in-process lock.
//
// The store runs on sqlx over either mattn/go-sqlite3 (embedded, dev,
// tests) or lib/pq (deployment). Queries are written with ? placeholders
// and passed through Rebind for the active driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	// database drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a referenced board, column, card or
	// user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a concurrent structural change
	// invalidates the caller's assumed state (e.g. an item in a batch
	// reorder was deleted). The enclosing transaction has been rolled
	// back; callers should refetch the board rather than retry.
	ErrConflict = errors.New("conflict")

	// ErrExists is returned when creating something that already exists
	// (duplicate username, duplicate membership).
	ErrExists = errors.New("already exists")
)

// Store wraps the database handle.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database and applies the schema.
// Supported drivers: "sqlite3" and "postgres".
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite serializes writers anyway; a single connection avoids
		// SQLITE_BUSY under concurrent request handlers.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database handle. Implements io.Closer.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity. Useful for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate applies the schema statements. All statements are idempotent.
func (s *Store) migrate() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders for the active driver.
func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

// forUpdate returns the row-locking suffix for reads that anchor a
// renumbering transaction. sqlite locks the whole database per
// transaction, so the suffix only applies to postgres.
func (s *Store) forUpdate() string {
	if s.driver == "postgres" {
		return " FOR UPDATE"
	}
	return ""
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notFoundOr maps sql.ErrNoRows to ErrNotFound, wrapping anything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}
