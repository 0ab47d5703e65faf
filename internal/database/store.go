package database

import (
	"context"
	"database/sql"
	"time"
)

// Store is the SQL implementation of DataStore
type Store struct {
	db              *sql.DB
	dialect         *dialect
	retryMaxElapsed time.Duration
}

func newStore(db *sql.DB, d *dialect, retryMaxElapsed time.Duration) *Store {
	if retryMaxElapsed <= 0 {
		retryMaxElapsed = defaultRetryMaxElapsed
	}
	return &Store{db: db, dialect: d, retryMaxElapsed: retryMaxElapsed}
}

// NewSQLiteStore wraps an already migrated SQLite connection. Used by tests
// that build their own in-memory database.
func NewSQLiteStore(db *sql.DB) *Store {
	return newStore(db, sqliteDialect, 0)
}

// MigrateSQLite creates the SQLite schema on db
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, sqliteDialect)
}

// Driver reports which dialect the store speaks
func (s *Store) Driver() string {
	return s.dialect.name
}

// DB exposes the underlying connection pool
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside one transaction, retrying the whole body on
// serialization conflicts.
func (s *Store) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return withTx(ctx, s.db, s.dialect, s.retryMaxElapsed, func(tx *sql.Tx) error {
		t := newSQLTx(tx, s.dialect)
		defer t.close()
		return fn(t)
	})
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}
