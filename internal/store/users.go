package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/crumblab/cookiejar/internal/apperr"
)

// UserRow represents a row in the users table. Cookies is the inline
// counter column; the linked representation keeps its value elsewhere.
type UserRow struct {
	UserID           int64
	Name             string
	DisplayName      string
	Description      string
	HasVerifiedBadge bool
	Cookies          int64
	CreatedAt        time.Time
}

// NewUser holds the fields accepted when creating a user.
type NewUser struct {
	UserID           int64
	Name             string
	DisplayName      string
	Description      string
	HasVerifiedBadge bool
}

const userColumns = `user_id, name, display_name, description, has_verified_badge, cookies, created_at`

// CreateUser inserts a new user with a zero cookie counter.
// Reusing an existing external id fails with apperr.ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, nu NewUser) (*UserRow, error) {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (user_id, name, display_name, description, has_verified_badge)
		VALUES (?, ?, ?, ?, ?)
	`, nu.UserID, nu.Name, nu.DisplayName, nu.Description, nu.HasVerifiedBadge)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, apperr.ErrDuplicate
		}
		return nil, fmt.Errorf("store: create user %d: %w", nu.UserID, err)
	}
	return db.GetUserByID(ctx, nu.UserID)
}

// GetUserByID returns the user with the given external id.
func (db *DB) GetUserByID(ctx context.Context, userID int64) (*UserRow, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
	return scanUser(row, fmt.Sprintf("get user %d", userID))
}

// GetUserByName returns the first user whose name or display name equals the
// given value. The order among multiple matches is store-defined.
func (db *DB) GetUserByName(ctx context.Context, name string) (*UserRow, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE name = ? OR display_name = ? ORDER BY id LIMIT 1`,
		name, name)
	return scanUser(row, fmt.Sprintf("get user by name %q", name))
}

func scanUser(row *sql.Row, op string) (*UserRow, error) {
	var u UserRow
	err := row.Scan(&u.UserID, &u.Name, &u.DisplayName, &u.Description,
		&u.HasVerifiedBadge, &u.Cookies, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	return &u, nil
}
