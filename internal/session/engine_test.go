package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/connect4/go-server/internal/events"
	"github.com/robalobadob/connect4/go-server/internal/game"
	"github.com/robalobadob/connect4/go-server/internal/match"
	"github.com/robalobadob/connect4/go-server/internal/session"
	"github.com/robalobadob/connect4/go-server/internal/store"
)

// recorder captures notifications per connection.
type recorder struct {
	mu   sync.Mutex
	msgs []sent
}

type sent struct {
	conn string
	typ  string
	data any
}

func (r *recorder) Send(conn, msgType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sent{conn: conn, typ: msgType, data: data})
}

func (r *recorder) count(msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.typ == msgType {
			n++
		}
	}
	return n
}

func (r *recorder) last(conn, msgType string) (sent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if r.msgs[i].conn == conn && r.msgs[i].typ == msgType {
			return r.msgs[i], true
		}
	}
	return sent{}, false
}

// pubRecorder captures analytics event types in publish order.
type pubRecorder struct {
	mu    sync.Mutex
	types []string
}

func (p *pubRecorder) Publish(ctx context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
	return nil
}

func (p *pubRecorder) Close() error { return nil }

func (p *pubRecorder) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

var _ session.Notifier = (*recorder)(nil)
var _ events.Publisher = (*pubRecorder)(nil)

type fixture struct {
	engine *session.Engine
	clock  *clockwork.FakeClock
	rec    *recorder
	pub    *pubRecorder
	mem    *store.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock: clockwork.NewFakeClock(),
		rec:   &recorder{},
		pub:   &pubRecorder{},
		mem:   store.NewMemory(),
	}
	f.engine = session.New(session.DefaultConfig(), f.clock, f.rec, f.mem, f.pub)
	return f
}

// startHumanMatch joins two players and returns the match id.
func (f *fixture) startHumanMatch(t *testing.T) string {
	t.Helper()
	f.engine.Join("c1", "alice")
	f.engine.Join("c2", "bob")
	gs, ok := f.rec.last("c1", session.MsgGameStart)
	require.True(t, ok, "first joiner should get game_start")
	return gs.data.(session.GameStart).GameID
}

func TestSecondJoinPairsImmediately(t *testing.T) {
	f := newFixture(t)
	f.engine.Join("c1", "alice")
	require.Equal(t, 1, f.rec.count(session.MsgWaiting))

	f.engine.Join("c2", "bob")
	require.Equal(t, 2, f.rec.count(session.MsgGameStart))
	// paired joiner is never told to wait
	require.Equal(t, 1, f.rec.count(session.MsgWaiting))

	a, _ := f.rec.last("c1", session.MsgGameStart)
	b, _ := f.rec.last("c2", session.MsgGameStart)
	gsA := a.data.(session.GameStart)
	gsB := b.data.(session.GameStart)
	assert.Equal(t, game.SideA, gsA.Side)
	assert.Equal(t, game.SideB, gsB.Side)
	assert.Equal(t, "bob", gsA.Opponent)
	assert.Equal(t, "alice", gsB.Opponent)
	assert.Equal(t, gsA.GameID, gsB.GameID)
	assert.False(t, gsA.IsBot)

	// the bot-fallback timers for both entries must be no-ops
	f.clock.Advance(time.Minute)
	assert.Never(t, func() bool {
		return f.rec.count(session.MsgGameStart) > 2
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestSoloJoinFallsBackToBot(t *testing.T) {
	f := newFixture(t)
	f.engine.Join("c1", "alice")
	require.Equal(t, 0, f.rec.count(session.MsgGameStart))

	f.clock.Advance(10 * time.Second)
	require.Eventually(t, func() bool {
		return f.rec.count(session.MsgGameStart) == 1
	}, time.Second, 10*time.Millisecond)

	gs, _ := f.rec.last("c1", session.MsgGameStart)
	start := gs.data.(session.GameStart)
	assert.Equal(t, game.SideA, start.Side, "human always holds side A against the bot")
	assert.Equal(t, match.BotName, start.Opponent)
	assert.True(t, start.IsBot)
}

func TestFullGameToWin(t *testing.T) {
	f := newFixture(t)
	id := f.startHumanMatch(t)

	moves := []struct {
		conn string
		col  int
	}{
		{"c1", 0}, {"c2", 6},
		{"c1", 1}, {"c2", 6},
		{"c1", 2}, {"c2", 6},
		{"c1", 3},
	}
	for _, mv := range moves {
		f.engine.Move(mv.conn, id, mv.col)
	}

	// every successful move is broadcast to both seats
	assert.Equal(t, 14, f.rec.count(session.MsgBoardUpdate))
	require.Equal(t, 2, f.rec.count(session.MsgGameEnd))
	end, _ := f.rec.last("c2", session.MsgGameEnd)
	ge := end.data.(session.GameEnd)
	assert.Equal(t, match.ResultWin, ge.Result)
	assert.Equal(t, "alice", ge.Winner)

	// result persisted and leaderboard bumped
	results := f.mem.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "win", results[0].Kind)
	assert.Equal(t, "alice", results[0].Winner)
	rows, err := f.mem.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, store.LeaderboardRow{Username: "alice", Wins: 1}, rows[0])

	// analytics events in creation order
	all := f.pub.all()
	require.Len(t, all, 9)
	assert.Equal(t, session.EventMatchStart, all[0])
	assert.Equal(t, session.EventMatchEnd, all[len(all)-1])

	// the ended match stays reachable through the retention window...
	require.NotNil(t, f.engine.Lookup("c1"))
	// ...and is garbage collected afterwards
	f.clock.Advance(15 * time.Second)
	require.Eventually(t, func() bool {
		return f.engine.Lookup("c1") == nil
	}, time.Second, 10*time.Millisecond)

	// moves against the removed match are rejected
	f.engine.Move("c1", id, 0)
	last, ok := f.rec.last("c1", session.MsgError)
	require.True(t, ok)
	assert.Equal(t, "invalid game", last.data)
}

func TestMoveRejections(t *testing.T) {
	f := newFixture(t)
	id := f.startHumanMatch(t)

	f.engine.Move("c1", "no-such-match", 0)
	msg, _ := f.rec.last("c1", session.MsgError)
	assert.Equal(t, "invalid game", msg.data)

	f.engine.Move("c3", id, 0)
	msg, _ = f.rec.last("c3", session.MsgError)
	assert.Equal(t, "not part of game", msg.data)

	f.engine.Move("c2", id, 0)
	msg, _ = f.rec.last("c2", session.MsgError)
	assert.Equal(t, "not your turn", msg.data)

	f.engine.Move("c1", id, 7)
	inv, _ := f.rec.last("c1", session.MsgInvalidMove)
	assert.Equal(t, "column out of range", inv.data)

	// fill column 0, then a drop into it is client-correctable
	conns := []string{"c1", "c2"}
	for i := 0; i < 6; i++ {
		f.engine.Move(conns[i%2], id, 0)
	}
	f.engine.Move("c1", id, 0)
	inv, _ = f.rec.last("c1", session.MsgInvalidMove)
	assert.Equal(t, "column full", inv.data)

	// none of the rejections ended the match
	assert.Equal(t, 0, f.rec.count(session.MsgGameEnd))
}

func TestDisconnectForfeitsAfterGrace(t *testing.T) {
	f := newFixture(t)
	f.startHumanMatch(t)

	f.engine.Disconnect("c2")
	assert.Equal(t, 0, f.rec.count(session.MsgGameEnd))

	f.clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool {
		return f.rec.count(session.MsgGameEnd) == 1
	}, time.Second, 10*time.Millisecond)

	end, ok := f.rec.last("c1", session.MsgGameEnd)
	require.True(t, ok, "game_end goes to the connected seat only")
	ge := end.data.(session.GameEnd)
	assert.Equal(t, match.ResultForfeit, ge.Result)
	assert.Equal(t, "alice", ge.Winner)

	results := f.mem.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "forfeit", results[0].Kind)
}

func TestReconnectWithinGraceAvoidsForfeit(t *testing.T) {
	f := newFixture(t)
	id := f.startHumanMatch(t)
	f.engine.Move("c1", id, 3)

	f.engine.Disconnect("c2")
	f.clock.Advance(10 * time.Second)

	f.engine.Reconnect("c2b", "bob", id)
	rj, ok := f.rec.last("c2b", session.MsgRejoined)
	require.True(t, ok)
	rejoined := rj.data.(session.Rejoined)
	assert.Equal(t, id, rejoined.GameID)
	assert.Equal(t, game.SideB, rejoined.Side)
	assert.Equal(t, game.SideB, rejoined.Turn)
	assert.Equal(t, game.SideA.Mark(), rejoined.Board[5][3])

	opp, ok := f.rec.last("c1", session.MsgOpponentReconnected)
	require.True(t, ok)
	assert.Equal(t, session.OpponentReconnected{Username: "bob"}, opp.data)

	// the stale grace timer fires and must change nothing
	f.clock.Advance(30 * time.Second)
	assert.Never(t, func() bool {
		return f.rec.count(session.MsgGameEnd) > 0
	}, 200*time.Millisecond, 20*time.Millisecond)

	// play continues on the new connection
	f.engine.Move("c2b", id, 3)
	assert.Equal(t, 0, f.rec.count(session.MsgError))
}

func TestReconnectByDisplayNameOnly(t *testing.T) {
	f := newFixture(t)
	f.startHumanMatch(t)
	f.engine.Disconnect("c1")

	// client lost the match id; display name is the durable key
	f.engine.Reconnect("c1b", "alice", "")
	_, ok := f.rec.last("c1b", session.MsgRejoined)
	assert.True(t, ok)
}

func TestReconnectRejections(t *testing.T) {
	f := newFixture(t)
	id := f.startHumanMatch(t)

	f.engine.Reconnect("cx", "mallory", id)
	msg, _ := f.rec.last("cx", session.MsgError)
	assert.Equal(t, "not a player", msg.data)

	f.engine.Reconnect("cy", "nobody", "missing")
	msg, _ = f.rec.last("cy", session.MsgError)
	assert.Equal(t, "game not found", msg.data)
}

func TestBotMovesAfterThinkDelay(t *testing.T) {
	f := newFixture(t)
	f.engine.Join("c1", "alice")
	f.clock.Advance(10 * time.Second)
	require.Eventually(t, func() bool {
		return f.rec.count(session.MsgGameStart) == 1
	}, time.Second, 10*time.Millisecond)
	gs, _ := f.rec.last("c1", session.MsgGameStart)
	id := gs.data.(session.GameStart).GameID

	f.engine.Move("c1", id, 0)
	require.Equal(t, 1, f.rec.count(session.MsgBoardUpdate))

	f.clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool {
		return f.rec.count(session.MsgBoardUpdate) == 2
	}, time.Second, 10*time.Millisecond)

	upd, _ := f.rec.last("c1", session.MsgBoardUpdate)
	assert.Equal(t, game.SideB, upd.data.(session.BoardUpdate).LastMove.Side)
}

func TestRemoveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	id := f.startHumanMatch(t)

	f.engine.Remove(id)
	assert.Nil(t, f.engine.Lookup("c1"))
	f.engine.Remove(id) // second removal is a no-op
	assert.Nil(t, f.engine.Lookup("c1"))
}

func TestDisconnectOfUnknownConnIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.engine.Disconnect("never-seen")
	f.clock.Advance(time.Minute)
	assert.Never(t, func() bool {
		return f.rec.count(session.MsgGameEnd) > 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}
