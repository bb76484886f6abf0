// Package store implements persistence for the supplies tracker on top of
// database/sql. Functions take a context and connection explicitly; errors
// that callers branch on are the typed errors from the model package.
package store

import (
	"context"
	"database/sql"
	"strings"
)

// execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Operations that must run inside a caller's transaction accept it.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
