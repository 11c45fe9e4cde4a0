// internal/session/queue.go
//
// Matchmaking queue: plain FIFO, first two waiters get paired. No skill
// matching. The engine's mutex guards all access; entries are removed exactly
// once, either by pairing or by the bot-fallback timer.

package session

import (
	"time"

	"github.com/robalobadob/connect4/go-server/internal/match"
)

type waitingEntry struct {
	player     match.Player
	enqueuedAt time.Time
}

type queue struct {
	entries []*waitingEntry
}

func (q *queue) push(e *waitingEntry) {
	q.entries = append(q.entries, e)
}

// popPair dequeues the two oldest waiters, or reports false if fewer than
// two are waiting.
func (q *queue) popPair() (a, b *waitingEntry, ok bool) {
	if len(q.entries) < 2 {
		return nil, nil, false
	}
	a, b = q.entries[0], q.entries[1]
	q.entries = q.entries[2:]
	return a, b, true
}

// remove takes a specific entry out of the queue. Reports false when the
// entry is already gone, which is how a stale bot-fallback timer turns into
// a no-op.
func (q *queue) remove(e *waitingEntry) bool {
	for i, w := range q.entries {
		if w == e {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}
