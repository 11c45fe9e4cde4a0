// internal/store/sqlite.go
//
// SQLite-backed Store for single-node deployments without a Postgres. Same
// two tables as the Postgres store; WAL + busy timeout set on open.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	player_a   TEXT NOT NULL,
	player_b   TEXT NOT NULL,
	winner     TEXT,
	result     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	ended_at   TEXT NOT NULL,
	board      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS leaderboard (
	username TEXT PRIMARY KEY,
	wins     INTEGER NOT NULL DEFAULT 0
);`

// SQLite is a Store backed by a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if missing) the database file and applies the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveResult(ctx context.Context, r Result) error {
	board, err := json.Marshal(r.Board)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, player_a, player_b, winner, result, created_at, ended_at, board)
		 VALUES (?,?,?,?,?,?,?,?)`,
		r.MatchID, r.PlayerA, r.PlayerB, nullable(r.Winner), r.Kind,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.EndedAt.UTC().Format(time.RFC3339),
		string(board))
	return err
}

func (s *SQLite) IncrementWins(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leaderboard (username, wins) VALUES (?, 1)
		 ON CONFLICT (username) DO UPDATE SET wins = wins + 1`,
		username)
	return err
}

func (s *SQLite) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, wins FROM leaderboard ORDER BY wins DESC, username ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.Username, &r.Wins); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }
