package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crumblab/cookiejar/internal/apperr"
)

// InlineCounters stores each counter as the cookies column on the user row.
// The counter exists from the moment the user is created, initialised to 0.
type InlineCounters struct {
	db *DB
}

// NewInlineCounters creates the inline counter repository.
func NewInlineCounters(db *DB) *InlineCounters {
	return &InlineCounters{db: db}
}

// Replace overwrites the counter unconditionally.
func (c *InlineCounters) Replace(ctx context.Context, userID, value int64) (*CounterState, error) {
	var v int64
	err := c.db.conn.QueryRowContext(ctx,
		`UPDATE users SET cookies = ? WHERE user_id = ? RETURNING cookies`,
		value, userID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: replace cookies for %d: %w", userID, err)
	}
	return &CounterState{UserID: userID, Value: v}, nil
}

// Add applies delta as a single atomic read-modify-write statement.
func (c *InlineCounters) Add(ctx context.Context, userID, delta int64) (*CounterState, error) {
	var v int64
	err := c.db.conn.QueryRowContext(ctx,
		`UPDATE users SET cookies = cookies + ? WHERE user_id = ? RETURNING cookies`,
		delta, userID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: add cookies for %d: %w", userID, err)
	}
	return &CounterState{UserID: userID, Value: v}, nil
}

// Get returns the current counter value.
func (c *InlineCounters) Get(ctx context.Context, userID int64) (int64, error) {
	var v int64
	err := c.db.conn.QueryRowContext(ctx,
		`SELECT cookies FROM users WHERE user_id = ?`, userID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store: get cookies for %d: %w", userID, err)
	}
	return v, nil
}

// TopN returns at most n users ordered by counter value descending.
// Ties keep a store-defined stable order.
func (c *InlineCounters) TopN(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := c.db.conn.QueryContext(ctx, `
		SELECT user_id, name, display_name, has_verified_badge, cookies
		FROM users ORDER BY cookies DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("store: top cookies: %w", err)
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

func scanLeaderboard(rows *sql.Rows) ([]LeaderboardEntry, error) {
	out := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.DisplayName, &e.HasVerifiedBadge, &e.Cookies); err != nil {
			return nil, fmt.Errorf("store: scan leaderboard row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: leaderboard rows: %w", err)
	}
	return out, nil
}
