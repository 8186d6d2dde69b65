package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crumblab/cookiejar/internal/apperr"
)

const jarsSchemaSQL = `
CREATE TABLE IF NOT EXISTS cookie_jars (
	owner_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	value    INTEGER NOT NULL DEFAULT 0
);
`

// LinkedCounters stores each counter in a separate cookie_jars record linked
// one-to-one with its owning user. The record is created lazily on the first
// write; the unique constraint on owner_id enforces at most one record per
// user.
type LinkedCounters struct {
	db *DB
}

// NewLinkedCounters creates the linked counter repository and applies its
// schema.
func NewLinkedCounters(db *DB) (*LinkedCounters, error) {
	if _, err := db.conn.Exec(jarsSchemaSQL); err != nil {
		return nil, fmt.Errorf("store: apply cookie_jars schema: %w", err)
	}
	return &LinkedCounters{db: db}, nil
}

// ownerID resolves the surrogate key of the owning user. Users are never
// deleted, so the resolved id cannot go stale between statements.
func (c *LinkedCounters) ownerID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := c.db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE user_id = ?`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store: resolve owner of %d: %w", userID, err)
	}
	return id, nil
}

// Replace overwrites the counter unconditionally, creating the record if it
// does not exist yet.
func (c *LinkedCounters) Replace(ctx context.Context, userID, value int64) (*CounterState, error) {
	owner, err := c.ownerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var v int64
	err = c.db.conn.QueryRowContext(ctx, `
		INSERT INTO cookie_jars (owner_id, value) VALUES (?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET value = excluded.value
		RETURNING value
	`, owner, value).Scan(&v)
	if err != nil {
		return nil, fmt.Errorf("store: replace cookies for %d: %w", userID, err)
	}
	return &CounterState{UserID: userID, Value: v}, nil
}

// Add is an atomic upsert-increment: the record is created with value delta
// if absent, otherwise delta is added to the current value, all in a single
// statement.
func (c *LinkedCounters) Add(ctx context.Context, userID, delta int64) (*CounterState, error) {
	owner, err := c.ownerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var v int64
	err = c.db.conn.QueryRowContext(ctx, `
		INSERT INTO cookie_jars (owner_id, value) VALUES (?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET value = value + excluded.value
		RETURNING value
	`, owner, delta).Scan(&v)
	if err != nil {
		return nil, fmt.Errorf("store: add cookies for %d: %w", userID, err)
	}
	return &CounterState{UserID: userID, Value: v}, nil
}

// Get returns the current counter value. A missing user and a user whose
// counter has not been written yet surface identically as apperr.ErrNotFound.
func (c *LinkedCounters) Get(ctx context.Context, userID int64) (int64, error) {
	var v int64
	err := c.db.conn.QueryRowContext(ctx, `
		SELECT j.value FROM cookie_jars j
		JOIN users u ON u.id = j.owner_id
		WHERE u.user_id = ?
	`, userID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store: get cookies for %d: %w", userID, err)
	}
	return v, nil
}

// TopN returns at most n users ordered by counter value descending. Users
// without a counter record rank with value 0, so both representations expose
// the same population.
func (c *LinkedCounters) TopN(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := c.db.conn.QueryContext(ctx, `
		SELECT u.user_id, u.name, u.display_name, u.has_verified_badge, COALESCE(j.value, 0)
		FROM users u
		LEFT JOIN cookie_jars j ON j.owner_id = u.id
		ORDER BY COALESCE(j.value, 0) DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("store: top cookies: %w", err)
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}
