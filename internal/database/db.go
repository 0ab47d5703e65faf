// Package database handles the initialization and connection to the ticket store
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Options selects and configures the backing database
type Options struct {
	// Driver is "sqlite" (default) or "mysql"
	Driver string

	// Path is the SQLite file. Empty means ~/.lanes/lanes.db, ":memory:" is allowed.
	Path string

	// DSN is the MySQL data source name, e.g. "user:pass@tcp(host:3306)/lanes"
	DSN string

	// RetryMaxElapsed bounds how long a conflicting transaction is retried
	RetryMaxElapsed time.Duration
}

// DefaultPath returns ~/.lanes/lanes.db, creating the directory if needed
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	lanesDir := filepath.Join(home, ".lanes")
	if err := os.MkdirAll(lanesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	return filepath.Join(lanesDir, "lanes.db"), nil
}

// Open initializes the database described by opts and wraps it in a Store
func Open(ctx context.Context, opts Options) (*Store, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	db, err := InitDB(ctx, d, opts)
	if err != nil {
		return nil, err
	}

	return newStore(db, d, opts.RetryMaxElapsed), nil
}

// InitDB opens the connection, applies per-dialect session settings and runs migrations
func InitDB(ctx context.Context, d *dialect, opts Options) (*sql.DB, error) {
	dsn, err := d.dataSource(opts)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if d.singleWriter {
		// SQLite benefits from a single writer connection; it is also what keeps
		// ":memory:" databases from splitting into one database per connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	for _, pragma := range d.session {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			slog.Error("Failed to apply session setting", "setting", pragma, "error", err)
			closeQuietly(db)
			return nil, err
		}
	}

	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := runMigrations(ctx, db, d); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func closeQuietly(db *sql.DB) {
	if closeErr := db.Close(); closeErr != nil {
		slog.Error("error closing db", "error", closeErr)
	}
}

// sqliteDSN adds the connection parameters we need to a file path.
// Immediate transactions take the write lock up front so a read-then-write
// body never fails halfway on lock upgrade.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_txlock=immediate"
}
