// Package store provides SQLite-backed persistence for users and their
// cookie counters.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const usersSchemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id            INTEGER NOT NULL UNIQUE,
	name               TEXT NOT NULL DEFAULT '',
	display_name       TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	has_verified_badge INTEGER NOT NULL DEFAULT 0,
	cookies            INTEGER NOT NULL DEFAULT 0,
	created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_users_name ON users(name);
CREATE INDEX IF NOT EXISTS idx_users_display_name ON users(display_name);
`

// DB wraps a sql.DB with user and counter operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the users schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(usersSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply users schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
