// internal/store/postgres.go
//
// Postgres-backed Store (lib/pq). This is the production backend; the
// original deployment keeps results in a `games` table and win counts in a
// `leaderboard` table with an upsert per win.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	player_a   TEXT NOT NULL,
	player_b   TEXT NOT NULL,
	winner     TEXT,
	result     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	ended_at   TIMESTAMPTZ NOT NULL,
	board      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS leaderboard (
	username TEXT PRIMARY KEY,
	wins     INTEGER NOT NULL DEFAULT 0
);`

// Postgres is a Store backed by a Postgres database.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects, verifies the connection, and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) SaveResult(ctx context.Context, r Result) error {
	board, err := json.Marshal(r.Board)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO games (id, player_a, player_b, winner, result, created_at, ended_at, board)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.MatchID, r.PlayerA, r.PlayerB, nullable(r.Winner), r.Kind, r.CreatedAt, r.EndedAt, string(board))
	return err
}

func (p *Postgres) IncrementWins(ctx context.Context, username string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO leaderboard (username, wins) VALUES ($1, 1)
		 ON CONFLICT (username) DO UPDATE SET wins = leaderboard.wins + 1`,
		username)
	return err
}

func (p *Postgres) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT username, wins FROM leaderboard ORDER BY wins DESC, username ASC LIMIT $1`, limit)
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

// Close releases the underlying connection pool.
func (p *Postgres) Close() error { return p.db.Close() }

// nullable maps "" to SQL NULL for the winner column.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
