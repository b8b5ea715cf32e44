package i

import (
	"context"
	"time"

	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/google/uuid"
)

// LeaderboardEntry is one ranked win.
type LeaderboardEntry struct {
	UserID   uuid.UUID     `json:"userId"`
	Duration time.Duration `json:"duration"`
	Rank     int64         `json:"rank"`
}

// Leaderboard ranks users by their fastest win on each board configuration.
type Leaderboard interface {
	// Submit records a win, keeping only the user's best time per board.
	Submit(ctx context.Context, board game.Config, userID uuid.UUID, d time.Duration) error

	// Top returns up to n entries, fastest first.
	Top(ctx context.Context, board game.Config, n int64) ([]LeaderboardEntry, error)

	// Count returns the number of users ranked on the board.
	Count(ctx context.Context, board game.Config) (int64, error)

	// Rank returns the entry of a user, or false if the user never won on the board.
	Rank(ctx context.Context, board game.Config, userID uuid.UUID) (LeaderboardEntry, bool, error)
}

// Locker provides mutual exclusion across service instances.
type Locker interface {
	// Lock acquires the named lock and returns the function releasing it.
	Lock(ctx context.Context, name string) (unlock func(), err error)
}
