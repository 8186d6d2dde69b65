package api

import "github.com/crumblab/cookiejar/internal/userservice"

// CreateUserRequest is the request body for creating a user.
// UserID is a pointer so that an absent field can be told apart from 0.
type CreateUserRequest struct {
	UserID           *int64 `json:"userId"`
	Name             string `json:"name"`
	DisplayName      string `json:"displayName"`
	Description      string `json:"description"`
	HasVerifiedBadge bool   `json:"hasVerifiedBadge"`
}

// CookieRequest is the request body for counter mutations.
type CookieRequest struct {
	Quantity *int64 `json:"quantity"`
}

// UserDetail is the full user response type (aliased from the domain layer).
type UserDetail = userservice.User

// CookieState is the counter response type (aliased from the domain layer).
type CookieState = userservice.CookieState

// LeaderboardEntry is one ranked row (aliased from the domain layer).
type LeaderboardEntry = userservice.LeaderboardEntry

// LeaderboardResponse wraps the ranked top-N listing.
type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
