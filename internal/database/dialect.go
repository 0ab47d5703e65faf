package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// dialect captures everything that differs between the supported databases
type dialect struct {
	name         string
	driver       string
	session      []string
	schema       []string
	txOptions    *sql.TxOptions
	singleWriter bool
	dataSource   func(Options) (string, error)
	isRetryable  func(error) bool
	isDuplicate  func(error) bool
}

// mapWriteError reports unique constraint violations as ErrDuplicateKey
func (d *dialect) mapWriteError(err error) error {
	if err != nil && d.isDuplicate(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func dialectFor(driver string) (*dialect, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		return sqliteDialect, nil
	case DriverMySQL:
		return mysqlDialect, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q (must be: sqlite, mysql)", driver)
}

var sqliteDialect = &dialect{
	name:   DriverSQLite,
	driver: "sqlite",
	session: []string{
		// Enable foreign key constraints (required for CASCADE deletions)
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		// SQLite will retry for this duration before reporting SQLITE_BUSY
		"PRAGMA busy_timeout = 5000",
	},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			project_key TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK (status IN ('TODO', 'IN_PROGRESS', 'DONE', 'BLOCKED')),
			priority TEXT NOT NULL CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH', 'CRITICAL')),
			assignee_id TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'MANUAL',
			source_url TEXT NOT NULL DEFAULT '',
			position REAL NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_column
			ON tickets(project_id, status, position, created_at)`,
	},
	singleWriter: true,
	dataSource: func(opts Options) (string, error) {
		path := opts.Path
		if path == "" {
			var err error
			if path, err = DefaultPath(); err != nil {
				return "", err
			}
		}
		return sqliteDSN(path), nil
	},
	isRetryable: func(err error) bool {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			code := sqliteErr.Code() & 0xff
			return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
		}
		return strings.Contains(strings.ToLower(err.Error()), "database is locked")
	},
	isDuplicate: func(err error) bool {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
		}
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

var mysqlDialect = &dialect{
	name:   DriverMySQL,
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(36) PRIMARY KEY,
			project_key VARCHAR(10) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id VARCHAR(36) PRIMARY KEY,
			project_id VARCHAR(36) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			status VARCHAR(16) NOT NULL CHECK (status IN ('TODO', 'IN_PROGRESS', 'DONE', 'BLOCKED')),
			priority VARCHAR(16) NOT NULL CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH', 'CRITICAL')),
			assignee_id VARCHAR(64) NOT NULL DEFAULT '',
			source VARCHAR(32) NOT NULL DEFAULT 'MANUAL',
			source_url VARCHAR(2048) NOT NULL DEFAULT '',
			position DOUBLE NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			INDEX idx_tickets_column (project_id, status, position, created_at),
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		)`,
	},
	// Two move/reorder transactions on the same column must not both commit
	txOptions: &sql.TxOptions{Isolation: sql.LevelSerializable},
	dataSource: func(opts Options) (string, error) {
		if opts.DSN == "" {
			return "", errors.New("mysql driver requires a DSN")
		}
		cfg, err := mysql.ParseDSN(opts.DSN)
		if err != nil {
			return "", fmt.Errorf("invalid mysql DSN: %w", err)
		}
		return cfg.FormatDSN(), nil
	},
	isRetryable: func(err error) bool {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) {
			// 1213 deadlock, 1205 lock wait timeout, 40001 serialization failure
			return mysqlErr.Number == 1213 || mysqlErr.Number == 1205 ||
				string(mysqlErr.SQLState[:]) == "40001"
		}
		return errors.Is(err, mysql.ErrInvalidConn)
	},
	isDuplicate: func(err error) bool {
		var mysqlErr *mysql.MySQLError
		// 1062 duplicate entry for a unique key
		return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
	},
}
