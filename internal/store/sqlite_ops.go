// sqlite_ops.go provides SQLite connection management and low-level operations.
//
// Separated to isolate SQLite-specific concerns (pragmas, connection pooling,
// driver registration) from business logic. This is the only file that imports
// the SQLite driver.
//
// Design: pragmas that are per-connection (foreign keys, busy timeout,
// synchronous) are passed through the DSN so every pooled connection gets
// them. Foreign keys in particular must be on for every connection or the
// cascades silently stop working. Write transactions start IMMEDIATE so a
// read-then-write inside Tx never has to upgrade its lock.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	// Register sqlite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite with WAL mode for concurrent access.
type SQLiteStore struct {
	db *sql.DB

	mu       sync.RWMutex
	limits   Limits
	observer func(Change)
}

// Compile-time interface compliance check.
var _ Store = (*SQLiteStore)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx so the same read and
// write helpers run inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dsn builds the connection string carrying the per-connection pragmas.
func dsn(path string) string {
	v := url.Values{}
	v.Add("_pragma", "foreign_keys(1)")
	v.Add("_pragma", "busy_timeout(5000)")
	v.Add("_pragma", "synchronous(NORMAL)")
	v.Set("_txlock", "immediate")
	return "file:" + path + "?" + v.Encode()
}

// Open opens the SQLite database file at path and returns a configured
// SQLiteStore. The caller should call Close on the returned store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// WAL lets readers proceed while a write transaction is open. It is a
	// property of the file, so setting it once is enough.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Init brings the bank up to the current schema. Safe to call on every open.
func (s *SQLiteStore) Init() error {
	return s.migrate(context.Background())
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for extensions that need custom tables.
// Extensions should not modify core tables directly.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// SetLimits replaces the size limits applied to writes.
func (s *SQLiteStore) SetLimits(l Limits) {
	s.mu.Lock()
	s.limits = l
	s.mu.Unlock()
}

func (s *SQLiteStore) currentLimits() Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// Observe registers fn to receive every committed change. A later call
// replaces the previous observer; nil removes it.
func (s *SQLiteStore) Observe(fn func(Change)) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// notify reports committed changes. Must only be called after commit.
func (s *SQLiteStore) notify(changes ...Change) {
	s.mu.RLock()
	fn := s.observer
	s.mu.RUnlock()
	if fn == nil {
		return
	}
	for _, c := range changes {
		fn(c)
	}
}

// scanner abstracts sql.Row and sql.Rows, enabling a single scan function
// to handle both single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

// Tx executes fn within a database transaction, handling Begin/Commit/Rollback
// automatically. If fn returns an error the transaction is rolled back and
// nothing fn wrote is visible to any reader.
//
//	err := s.Tx(ctx, func(tx *sql.Tx) error {
//	    if _, err := tx.ExecContext(ctx, `UPDATE ...`); err != nil {
//	        return err  // triggers rollback
//	    }
//	    return nil  // triggers commit
//	})
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// newID returns a time-ordered UUIDv7 string, so rows sort roughly by
// creation time even when ordered by id.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// execOne runs a write that must affect at least one row.
func execOne(ctx context.Context, q querier, op, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return dbErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbErr(op, err)
	}
	return mustAffect(op, n)
}
