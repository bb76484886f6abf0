package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    emp_id        TEXT NOT NULL,
    email         TEXT NOT NULL,
    name          TEXT NOT NULL,
    department    TEXT,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'employee' CHECK (role IN ('admin', 'head', 'store', 'employee')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_emp_id_active
    ON users(emp_id) WHERE deleted_at IS NULL;

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    quantity   INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    image      BLOB,
    image_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS requests (
    id           INTEGER PRIMARY KEY,
    emp_id       TEXT NOT NULL,
    name         TEXT NOT NULL,
    email        TEXT NOT NULL,
    department   TEXT NOT NULL,
    description  TEXT NOT NULL,
    suggestion   TEXT,
    status       TEXT NOT NULL DEFAULT 'Pending Department Approval',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME,
    delivered_to TEXT,
    delivered_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_requests_emp_id ON requests(emp_id);
CREATE INDEX IF NOT EXISTS idx_requests_department ON requests(department);

CREATE TABLE IF NOT EXISTS request_items (
    request_id INTEGER NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
    item_id    INTEGER NOT NULL REFERENCES items(id),
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    PRIMARY KEY (request_id, item_id)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
