// internal/session/engine.go
//
// Session engine: the single owner of the matchmaking queue and the match
// registry. All inbound events (join, move, reconnect, disconnect) and all
// timer callbacks (bot fallback, bot think delay, forfeit grace, post-match
// retention) funnel through here.
//
// Concurrency model:
//   - The engine mutex guards the queue and registry indices.
//   - Each match serializes its own transitions behind its own mutex.
//   - Timers are one-shot, never cancelled; every callback re-checks its
//     precondition and no-ops when the world moved on (entry already paired,
//     match already ended, player already reconnected). One redundant check
//     per timer instead of a cancellation race.
//   - The clock is injected (clockwork) so tests drive every timer with a
//     fake clock.
//
// Collaborator failures (result store, analytics publisher) are logged and
// swallowed: the in-memory transition and the player-visible outcome never
// depend on them.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connect4/go-server/internal/events"
	"github.com/robalobadob/connect4/go-server/internal/game"
	"github.com/robalobadob/connect4/go-server/internal/match"
	"github.com/robalobadob/connect4/go-server/internal/store"
)

// Analytics event types, published in creation order per match.
const (
	EventMatchStart = "match_start"
	EventMoveMade   = "move_made"
	EventMatchEnd   = "match_end"
)

// collaboratorTimeout bounds every store/publisher call so a slow
// collaborator cannot stall the event stream for long.
const collaboratorTimeout = 5 * time.Second

// Config holds the engine's timer durations.
type Config struct {
	BotWait      time.Duration // wait before substituting a bot opponent
	BotDelay     time.Duration // simulated bot thinking time
	ForfeitGrace time.Duration // reconnection window after a disconnect
	Retention    time.Duration // how long an ended match stays reachable
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BotWait:      10 * time.Second,
		BotDelay:     300 * time.Millisecond,
		ForfeitGrace: 30 * time.Second,
		Retention:    15 * time.Second,
	}
}

// Engine runs matchmaking and routes events to matches.
type Engine struct {
	cfg     Config
	clock   clockwork.Clock
	notify  Notifier
	results store.Store
	events  events.Publisher

	mu    sync.Mutex // guards queue and reg
	queue queue
	reg   *registry
}

// New constructs an engine. No background goroutines are started; everything
// runs on caller goroutines and timer callbacks.
func New(cfg Config, clock clockwork.Clock, n Notifier, results store.Store, pub events.Publisher) *Engine {
	return &Engine{
		cfg:     cfg,
		clock:   clock,
		notify:  n,
		results: results,
		events:  pub,
		reg:     newRegistry(),
	}
}

// Join enqueues a player and pairs the two oldest waiters if possible. An
// unpaired joiner is told to wait and gets a bot opponent after BotWait.
func (e *Engine) Join(conn, name string) {
	entry := &waitingEntry{
		player:     match.Player{Name: name, Conn: conn},
		enqueuedAt: e.clock.Now(),
	}

	e.mu.Lock()
	e.queue.push(entry)
	var m *match.Match
	if a, b, ok := e.queue.popPair(); ok {
		m = match.New(a.player, b.player, false, e.clock.Now())
		e.reg.register(m)
	}
	e.mu.Unlock()

	if m == nil {
		e.notify.Send(conn, MsgWaiting, nil)
		e.clock.AfterFunc(e.cfg.BotWait, func() { e.botFallback(entry) })
		return
	}
	e.announce(m)
}

// botFallback fires BotWait after an enqueue. If the entry was paired in the
// meantime this is a no-op; otherwise the waiter gets a bot match.
func (e *Engine) botFallback(entry *waitingEntry) {
	e.mu.Lock()
	if !e.queue.remove(entry) {
		e.mu.Unlock()
		return
	}
	m := match.NewBot(entry.player, e.clock.Now())
	e.reg.register(m)
	e.mu.Unlock()

	log.Info().Str("gameId", m.ID()).Str("player", entry.player.Name).Msg("no opponent found, starting bot match")
	e.announce(m)
}

// announce sends game_start to every connected seat and publishes the
// match_start event.
func (e *Engine) announce(m *match.Match) {
	aConn, bConn := m.Conns()
	aName, bName := m.Names()
	board := m.Board()

	if aConn != "" {
		e.notify.Send(aConn, MsgGameStart, GameStart{
			GameID: m.ID(), Side: game.SideA, Opponent: bName, Board: board, IsBot: m.BotMatch(),
		})
	}
	if bConn != "" {
		e.notify.Send(bConn, MsgGameStart, GameStart{
			GameID: m.ID(), Side: game.SideB, Opponent: aName, Board: board,
		})
	}
	e.publish(EventMatchStart, map[string]any{
		"gameId":  m.ID(),
		"players": []string{aName, bName},
		"bot":     m.BotMatch(),
		"ts":      e.clock.Now().UnixMilli(),
	})
}

// Move applies a column drop requested by conn. Rejections go back to the
// requesting connection only; match state is untouched by a rejection.
func (e *Engine) Move(conn, matchID string, col int) {
	if col < 0 || col >= game.Cols {
		e.notify.Send(conn, MsgInvalidMove, "column out of range")
		return
	}

	e.mu.Lock()
	m := e.reg.byID(matchID)
	e.mu.Unlock()
	if m == nil {
		e.notify.Send(conn, MsgError, "invalid game")
		return
	}

	res, err := m.ApplyMove(conn, col, e.clock.Now())
	if err != nil {
		if errors.Is(err, game.ErrColumnFull) {
			e.notify.Send(conn, MsgInvalidMove, "column full")
		} else {
			e.notify.Send(conn, MsgError, err.Error())
		}
		return
	}
	e.afterMove(m, res)
}

// botMove is the bot think-delay timer target.
func (e *Engine) botMove(m *match.Match) {
	res, ok, err := m.ApplyBotMove(e.clock.Now())
	if err != nil {
		// Broken invariant: the bot was on turn with no legal column. The
		// match has been forced to a terminal state; close it out.
		log.Error().Err(err).Str("gameId", m.ID()).Msg("bot move failed, forcing match end")
		e.finish(m, m.Outcome())
		return
	}
	if !ok {
		return // ended or no longer the bot's turn
	}
	e.afterMove(m, res)
}

// afterMove broadcasts the board, publishes move_made, and either finishes
// the match or schedules the bot's reply.
func (e *Engine) afterMove(m *match.Match, res match.MoveResult) {
	aConn, bConn := m.Conns()
	upd := BoardUpdate{Board: res.Board, LastMove: LastMove{Row: res.Row, Col: res.Col, Side: res.Side}}
	if aConn != "" {
		e.notify.Send(aConn, MsgBoardUpdate, upd)
	}
	if bConn != "" {
		e.notify.Send(bConn, MsgBoardUpdate, upd)
	}
	e.publish(EventMoveMade, map[string]any{
		"gameId": m.ID(),
		"by":     res.By,
		"col":    res.Col,
		"ts":     e.clock.Now().UnixMilli(),
	})

	if res.Ended {
		e.finish(m, res.Outcome)
		return
	}
	if res.BotNext {
		e.clock.AfterFunc(e.cfg.BotDelay, func() { e.botMove(m) })
	}
}

// Reconnect rebinds a player, found by match id or display name, to a new
// connection and resynchronizes them.
func (e *Engine) Reconnect(conn, name, matchID string) {
	e.mu.Lock()
	m := e.reg.byID(matchID)
	if m == nil {
		m = e.reg.lookupName(name)
	}
	e.mu.Unlock()
	if m == nil {
		e.notify.Send(conn, MsgError, "game not found")
		return
	}

	rj, err := m.Reconnect(name, conn)
	if err != nil {
		e.notify.Send(conn, MsgError, "not a player")
		return
	}

	e.mu.Lock()
	e.reg.bindConn(conn, m.ID())
	e.mu.Unlock()

	e.notify.Send(conn, MsgRejoined, Rejoined{GameID: m.ID(), Board: rj.Board, Side: rj.Side, Turn: rj.Turn})
	if rj.Other.Conn != "" {
		e.notify.Send(rj.Other.Conn, MsgOpponentReconnected, OpponentReconnected{Username: name})
	}
}

// Disconnect clears the seat bound to conn and starts the forfeit grace
// timer. The match survives the disconnect; only the expired timer, with the
// player still away, ends it.
func (e *Engine) Disconnect(conn string) {
	e.mu.Lock()
	m := e.reg.lookupConn(conn)
	e.reg.dropConn(conn)
	e.mu.Unlock()
	if m == nil {
		return
	}
	if m.Disconnect(conn, e.clock.Now()) {
		e.clock.AfterFunc(e.cfg.ForfeitGrace, func() { e.resolveForfeit(m) })
	}
}

// resolveForfeit is the grace timer target.
func (e *Engine) resolveForfeit(m *match.Match) {
	if out, ok := m.ResolveForfeit(); ok {
		e.finish(m, out)
	}
}

// finish delivers game_end, hands the result to the collaborators, and
// schedules registry removal after the retention window so clients receive
// the terminal notification before the match becomes unreachable.
func (e *Engine) finish(m *match.Match, out *match.Outcome) {
	aConn, bConn := m.Conns()
	msg := GameEnd{Result: out.Kind, Winner: out.Winner}
	if aConn != "" {
		e.notify.Send(aConn, MsgGameEnd, msg)
	}
	if bConn != "" {
		e.notify.Send(bConn, MsgGameEnd, msg)
	}

	aName, bName := m.Names()
	endedAt := e.clock.Now()
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	err := e.results.SaveResult(ctx, store.Result{
		MatchID:   m.ID(),
		PlayerA:   aName,
		PlayerB:   bName,
		Winner:    out.Winner,
		Kind:      string(out.Kind),
		CreatedAt: m.CreatedAt(),
		EndedAt:   endedAt,
		Board:     m.Board(),
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", m.ID()).Msg("save match result")
	}
	if out.Winner != "" {
		if err := e.results.IncrementWins(ctx, out.Winner); err != nil {
			log.Warn().Err(err).Str("winner", out.Winner).Msg("update leaderboard")
		}
	}

	e.publish(EventMatchEnd, map[string]any{
		"gameId":     m.ID(),
		"result":     out.Kind,
		"winner":     out.Winner,
		"durationMs": endedAt.Sub(m.CreatedAt()).Milliseconds(),
		"ts":         endedAt.UnixMilli(),
	})

	e.clock.AfterFunc(e.cfg.Retention, func() { e.Remove(m.ID()) })
}

// Remove drops a match and its index entries. Idempotent.
func (e *Engine) Remove(matchID string) {
	e.mu.Lock()
	removed := e.reg.remove(matchID)
	e.mu.Unlock()
	if removed {
		log.Debug().Str("gameId", matchID).Msg("match removed")
	}
}

// Lookup returns the match a connection is part of, if any. Used by tests
// and diagnostics.
func (e *Engine) Lookup(conn string) *match.Match {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.lookupConn(conn)
}

func (e *Engine) publish(eventType string, payload map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	if err := e.events.Publish(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("publish analytics event")
	}
}
