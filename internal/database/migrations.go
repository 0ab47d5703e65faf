package database

import (
	"context"
	"database/sql"
	"fmt"
)

// runMigrations creates the schema for the given dialect if it does not exist yet
func runMigrations(ctx context.Context, db *sql.DB, d *dialect) error {
	for i, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migration %d: %w", d.name, i+1, err)
		}
	}
	return nil
}
