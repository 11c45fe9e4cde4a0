// internal/store/store.go
//
// Result persistence for finished matches plus the win-count leaderboard.
// The session engine only sees the Store interface; implementations may be
// backed by Postgres, SQLite, or memory. All writes are best-effort from the
// engine's point of view: a store failure never changes a match outcome.

package store

import (
	"context"
	"time"

	"github.com/robalobadob/connect4/go-server/internal/game"
)

// Result is the persisted record of one finished match.
type Result struct {
	MatchID   string
	PlayerA   string
	PlayerB   string
	Winner    string // empty for draws and winnerless forfeits
	Kind      string // "win" | "draw" | "forfeit"
	CreatedAt time.Time
	EndedAt   time.Time
	Board     game.Board // final grid
}

// LeaderboardRow is one leaderboard entry.
type LeaderboardRow struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}

// Store persists match results and win counters.
type Store interface {
	// SaveResult records a finished match.
	SaveResult(ctx context.Context, r Result) error

	// IncrementWins bumps the winner's leaderboard counter, creating the
	// row on first win.
	IncrementWins(ctx context.Context, username string) error

	// Leaderboard returns up to limit entries ordered by wins descending.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
}
