// internal/match/match.go
//
// Match state machine: one two-player game instance.
// Responsibilities:
//   - Own the board, turn, player bindings, phase and outcome of one match.
//   - Serialize every transition behind a per-match mutex (client events and
//     timer callbacks can target the same match concurrently).
//   - Keep durable identity (display name) separate from the transient
//     connection handle, so reconnecting under a new connection is a plain
//     rebind rather than a special case.
//
// Timer scheduling lives in the session engine; this package only exposes the
// transitions those timers invoke, each of which re-checks its precondition
// and no-ops when stale.

package match

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/connect4/go-server/internal/game"
)

// BotName is the display name bound to the bot seat in fallback matches.
const BotName = "BOT"

// Client-correctable rejections. State is unchanged when any of these is
// returned.
var (
	ErrEnded      = errors.New("invalid game")
	ErrNotAPlayer = errors.New("not part of game")
	ErrOutOfTurn  = errors.New("not your turn")
)

// Phase is the match lifecycle state.
type Phase int

const (
	InProgress Phase = iota
	Ended
)

// ResultKind classifies how a match ended.
type ResultKind string

const (
	ResultWin     ResultKind = "win"
	ResultDraw    ResultKind = "draw"
	ResultForfeit ResultKind = "forfeit"
)

// Outcome describes a finished match. Winner is empty for draws and for
// degenerate forfeits where no side was left to win.
type Outcome struct {
	Kind   ResultKind
	Winner string // display name
}

// Player binds a seat to a durable display name and a transient connection.
// Conn is empty while disconnected, and always empty for the bot.
type Player struct {
	Name  string
	Conn  string
	IsBot bool
}

// Match is one game. All exported methods are safe for concurrent use; the
// internal mutex is the per-match serialization point.
type Match struct {
	mu sync.Mutex

	id        string
	players   map[game.Side]*Player
	board     game.Board
	turn      game.Side
	phase     Phase
	outcome   *Outcome
	createdAt time.Time
	lastMove  time.Time
	botMatch  bool
}

// New creates an InProgress match with side A to move. In bot matches the
// human always holds side A, so the human always opens.
func New(a, b Player, botMatch bool, now time.Time) *Match {
	return &Match{
		id:        uuid.NewString(),
		players:   map[game.Side]*Player{game.SideA: &a, game.SideB: &b},
		turn:      game.SideA,
		phase:     InProgress,
		createdAt: now,
		lastMove:  now,
		botMatch:  botMatch,
	}
}

// NewBot creates a fallback match of human vs the builtin bot.
func NewBot(human Player, now time.Time) *Match {
	return New(human, Player{Name: BotName, IsBot: true}, true, now)
}

func (m *Match) ID() string { return m.id }

// BotMatch reports whether side B is the builtin bot.
func (m *Match) BotMatch() bool { return m.botMatch }

// CreatedAt returns the match creation time.
func (m *Match) CreatedAt() time.Time { return m.createdAt }

// Phase returns the current lifecycle phase.
func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Outcome returns the final outcome, or nil while the match is in progress.
func (m *Match) Outcome() *Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome
}

// Player returns a copy of the player bound to side.
func (m *Match) Player(side game.Side) Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.players[side]
}

// Conns returns the currently bound connection ids, side A first. Empty
// strings mark disconnected seats and the bot.
func (m *Match) Conns() (a, b string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[game.SideA].Conn, m.players[game.SideB].Conn
}

// Names returns both display names, side A first.
func (m *Match) Names() (a, b string) {
	return m.players[game.SideA].Name, m.players[game.SideB].Name
}

// Board returns a copy of the current grid.
func (m *Match) Board() game.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board
}

// MoveResult reports a successfully applied move and what it led to.
type MoveResult struct {
	Row, Col int
	Side     game.Side
	By       string // mover's display name
	Board    game.Board
	Ended    bool
	Outcome  *Outcome // set when Ended
	BotNext  bool     // match still running and it is now the bot's turn
}

// ApplyMove applies a column drop requested by the given connection.
// Rejections (ErrEnded, ErrNotAPlayer, ErrOutOfTurn, game.ErrColumnFull)
// leave turn, phase and board untouched.
func (m *Match) ApplyMove(conn string, col int, now time.Time) (MoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != InProgress {
		return MoveResult{}, ErrEnded
	}
	side, ok := m.sideOfConn(conn)
	if !ok {
		return MoveResult{}, ErrNotAPlayer
	}
	if side != m.turn {
		return MoveResult{}, ErrOutOfTurn
	}
	return m.applyDrop(side, col, now)
}

// ApplyBotMove lets the bot take its turn. It is a timer target: when the
// match has already ended or the turn has moved on, it reports ok=false and
// changes nothing. game.ErrUnplayable escapes only on a broken invariant.
func (m *Match) ApplyBotMove(now time.Time) (MoveResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != InProgress || !m.players[m.turn].IsBot {
		return MoveResult{}, false, nil
	}
	botSide := m.turn
	col, err := game.ChooseColumn(&m.board, botSide, botSide.Other())
	if err != nil {
		// No legal column for the bot means a prior transition accepted a
		// move onto a full board. Force a safe terminal state.
		m.endLocked(&Outcome{Kind: ResultDraw})
		return MoveResult{}, false, err
	}
	res, err := m.applyDrop(botSide, col, now)
	return res, err == nil, err
}

// applyDrop places the disc and runs the shared terminal checks / turn flip.
// Caller holds the mutex and has validated side == turn.
func (m *Match) applyDrop(side game.Side, col int, now time.Time) (MoveResult, error) {
	row, err := game.Drop(&m.board, col, side)
	if err != nil {
		return MoveResult{}, err
	}
	m.lastMove = now

	res := MoveResult{Row: row, Col: col, Side: side, By: m.players[side].Name, Board: m.board}
	switch {
	case game.HasWin(&m.board, side):
		m.endLocked(&Outcome{Kind: ResultWin, Winner: m.players[side].Name})
	case game.Full(&m.board):
		m.endLocked(&Outcome{Kind: ResultDraw})
	default:
		m.turn = side.Other()
		res.BotNext = m.players[m.turn].IsBot
	}
	res.Ended = m.phase == Ended
	res.Outcome = m.outcome
	return res, nil
}

// Rejoin is the state a reconnecting client needs to resynchronize.
type Rejoin struct {
	Side  game.Side
	Board game.Board
	Turn  game.Side
	Other Player // opposing player, for the reconnect notification
}

// Reconnect rebinds the named player's seat to a new connection. Valid in any
// phase; board, turn and phase are unaffected.
func (m *Match) Reconnect(name, conn string) (Rejoin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for side, p := range m.players {
		if p.Name == name && !p.IsBot {
			p.Conn = conn
			return Rejoin{Side: side, Board: m.board, Turn: m.turn, Other: *m.players[side.Other()]}, nil
		}
	}
	return Rejoin{}, ErrNotAPlayer
}

// Disconnect clears the seat bound to conn and reports whether a seat
// matched. It never ends the match by itself; the engine schedules the
// forfeit grace timer.
func (m *Match) Disconnect(conn string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn == "" {
		return false
	}
	for _, p := range m.players {
		if p.Conn == conn {
			p.Conn = ""
			m.lastMove = now
			return true
		}
	}
	return false
}

// ResolveForfeit is the forfeit grace timer target. If the match is still in
// progress and a seat is still unbound, it ends the match as a forfeit and
// returns the outcome. Reports ok=false (no state change) when the match
// already ended or everyone reconnected in time.
//
// Winner: the seat that is still live. A bot seat counts as live (it has no
// connection to lose), so in a bot match an expired grace period hands the
// win to the bot when the human stays away; in a human match with both seats
// unbound the forfeit has no winner.
func (m *Match) ResolveForfeit() (*Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != InProgress {
		return nil, false
	}
	a, b := m.players[game.SideA], m.players[game.SideB]
	aLive := a.Conn != "" || a.IsBot
	bLive := b.Conn != "" || b.IsBot
	if aLive && bLive {
		return nil, false
	}

	out := &Outcome{Kind: ResultForfeit}
	switch {
	case aLive:
		out.Winner = a.Name
	case bLive:
		out.Winner = b.Name
	}
	m.endLocked(out)
	return out, true
}

func (m *Match) endLocked(out *Outcome) {
	m.phase = Ended
	m.outcome = out
}

func (m *Match) sideOfConn(conn string) (game.Side, bool) {
	if conn != "" {
		for side, p := range m.players {
			if p.Conn == conn {
				return side, true
			}
		}
	}
	return "", false
}
