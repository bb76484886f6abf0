package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: requests created before delivery timestamps were recorded
	// only carried delivered_to. Backfill delivered_at from updated_at so old
	// delivered requests still report a delivery time.
	`UPDATE requests SET delivered_at = updated_at
	     WHERE status = 'Delivered' AND delivered_at IS NULL AND updated_at IS NOT NULL`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
