// Package userservice coordinates user records and their cookie counters.
package userservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/crumblab/cookiejar/internal/apperr"
	"github.com/crumblab/cookiejar/internal/store"
)

// User is the full representation of a tracked user.
type User struct {
	UserID           int64     `json:"userId"`
	Name             string    `json:"name"`
	DisplayName      string    `json:"displayName"`
	Description      string    `json:"description"`
	HasVerifiedBadge bool      `json:"hasVerifiedBadge"`
	Cookies          int64     `json:"cookies"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CookieState is the counter value of one user.
type CookieState struct {
	UserID  int64 `json:"userId"`
	Cookies int64 `json:"cookies"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	UserID           int64  `json:"userId"`
	Name             string `json:"name"`
	DisplayName      string `json:"displayName"`
	HasVerifiedBadge bool   `json:"hasVerifiedBadge"`
	Cookies          int64  `json:"cookies"`
}

// CreateUserInput holds the fields accepted when creating a user.
// Only the external id is required.
type CreateUserInput struct {
	UserID           int64
	Name             string
	DisplayName      string
	Description      string
	HasVerifiedBadge bool
}

// Validate checks that the external id is present and positive.
func (in CreateUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required, validation.Min(int64(1))),
	)
}

// CookieEventFunc is called after a successful counter mutation.
// kind is "replaced" or "incremented".
type CookieEventFunc func(kind string, userID, cookies int64)

// Service coordinates the user repository and the cookie counter repository.
type Service struct {
	db       *store.DB
	counters store.CounterRepository
	events   CookieEventFunc
}

// NewService creates a new user service. events may be nil.
func NewService(db *store.DB, counters store.CounterRepository, events CookieEventFunc) *Service {
	return &Service{db: db, counters: counters, events: events}
}

// CreateUser validates the input and inserts a new user with a zero counter.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	row, err := s.db.CreateUser(ctx, store.NewUser{
		UserID:           in.UserID,
		Name:             in.Name,
		DisplayName:      in.DisplayName,
		Description:      in.Description,
		HasVerifiedBadge: in.HasVerifiedBadge,
	})
	if err != nil {
		return nil, err
	}
	return s.withCookies(ctx, row)
}

// GetUser returns the user with the given external id.
func (s *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	row, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withCookies(ctx, row)
}

// FindUserByName returns the first user whose name or display name matches.
func (s *Service) FindUserByName(ctx context.Context, name string) (*User, error) {
	row, err := s.db.GetUserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.withCookies(ctx, row)
}

// SetCookies overwrites the user's counter with quantity.
func (s *Service) SetCookies(ctx context.Context, userID, quantity int64) (*CookieState, error) {
	st, err := s.counters.Replace(ctx, userID, quantity)
	if err != nil {
		return nil, err
	}
	s.publish("replaced", st)
	return &CookieState{UserID: st.UserID, Cookies: st.Value}, nil
}

// AddCookies applies delta to the user's counter, creating it on first
// write. Negative deltas are accepted.
func (s *Service) AddCookies(ctx context.Context, userID, delta int64) (*CookieState, error) {
	st, err := s.counters.Add(ctx, userID, delta)
	if err != nil {
		return nil, err
	}
	s.publish("incremented", st)
	return &CookieState{UserID: st.UserID, Cookies: st.Value}, nil
}

// GetCookies returns the user's current counter value. In the linked
// representation a user whose counter has not been written yet reports
// apperr.ErrNotFound, same as a missing user.
func (s *Service) GetCookies(ctx context.Context, userID int64) (*CookieState, error) {
	v, err := s.counters.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CookieState{UserID: userID, Cookies: v}, nil
}

// Leaderboard returns at most n users ranked by counter value descending.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	rows, err := s.counters.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = LeaderboardEntry{
			UserID:           r.UserID,
			Name:             r.Name,
			DisplayName:      r.DisplayName,
			HasVerifiedBadge: r.HasVerifiedBadge,
			Cookies:          r.Cookies,
		}
	}
	return out, nil
}

func (s *Service) publish(kind string, st *store.CounterState) {
	if s.events != nil {
		s.events(kind, st.UserID, st.Value)
	}
}

// withCookies builds the user view with the counter value resolved through
// the active representation. A not-yet-written linked counter reads as 0.
func (s *Service) withCookies(ctx context.Context, row *store.UserRow) (*User, error) {
	v, err := s.counters.Get(ctx, row.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		v = 0
	} else if err != nil {
		return nil, err
	}
	return &User{
		UserID:           row.UserID,
		Name:             row.Name,
		DisplayName:      row.DisplayName,
		Description:      row.Description,
		HasVerifiedBadge: row.HasVerifiedBadge,
		Cookies:          v,
		CreatedAt:        row.CreatedAt,
	}, nil
}
