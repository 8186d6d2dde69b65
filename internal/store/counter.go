package store

import "context"

// CounterState is the current value of one user's cookie counter.
type CounterState struct {
	UserID int64
	Value  int64
}

// LeaderboardEntry is one row of the ranked top-N projection.
type LeaderboardEntry struct {
	UserID           int64
	Name             string
	DisplayName      string
	HasVerifiedBadge bool
	Cookies          int64
}

// CounterRepository defines the cookie counter operations. Two
// representations exist: the counter stored inline on the user row
// (InlineCounters) and a separate record linked one-to-one with its owner
// (LinkedCounters). Callers should depend on this interface rather than a
// concrete type.
//
// Replace races against concurrent writes on the same user with
// last-writer-wins semantics. Add is a single atomic upsert-increment:
// concurrent adds on the same user never lose an update. Neither operation
// validates the sign of its argument, so counter values may go negative.
type CounterRepository interface {
	Replace(ctx context.Context, userID, value int64) (*CounterState, error)
	Add(ctx context.Context, userID, delta int64) (*CounterState, error)
	Get(ctx context.Context, userID int64) (int64, error)
	TopN(ctx context.Context, n int) ([]LeaderboardEntry, error)
}

// Verify both representations satisfy CounterRepository at compile time.
var (
	_ CounterRepository = (*InlineCounters)(nil)
	_ CounterRepository = (*LinkedCounters)(nil)
)
