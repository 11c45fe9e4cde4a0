// internal/store/memory.go
//
// In-memory Store implementation. Used when no DATABASE_URL is configured
// (local development) and by tests. State is lost on restart.

package store

import (
	"context"
	"sort"
	"sync"
)

type Memory struct {
	mu      sync.RWMutex
	results []Result
	wins    map[string]int
}

// NewMemory constructs an in-memory Store.
func NewMemory() *Memory {
	return &Memory{wins: make(map[string]int)}
}

func (m *Memory) SaveResult(ctx context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *Memory) IncrementWins(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wins[username]++
	return nil
}

func (m *Memory) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]LeaderboardRow, 0, len(m.wins))
	for u, w := range m.wins {
		rows = append(rows, LeaderboardRow{Username: u, Wins: w})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].Username < rows[j].Username
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Results returns a copy of everything saved so far. Test helper.
func (m *Memory) Results() []Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, len(m.results))
	copy(out, m.results)
	return out
}
