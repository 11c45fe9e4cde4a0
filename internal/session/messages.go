// internal/session/messages.go
//
// Outbound notification types the engine hands to the transport. The JSON
// field names are the wire contract with the browser client.

package session

import (
	"github.com/robalobadob/connect4/go-server/internal/game"
	"github.com/robalobadob/connect4/go-server/internal/match"
)

// Notifier delivers one message to one connection. Implementations must not
// block the caller (the websocket hub buffers per-client).
type Notifier interface {
	Send(conn, msgType string, data any)
}

// Outbound message types.
const (
	MsgWaiting             = "waiting"
	MsgGameStart           = "game_start"
	MsgBoardUpdate         = "board_update"
	MsgGameEnd             = "game_end"
	MsgRejoined            = "rejoined"
	MsgOpponentReconnected = "opponent_reconnected"
	MsgError               = "error_msg"
	MsgInvalidMove         = "invalid_move"
)

// GameStart is sent to each player when their match begins.
type GameStart struct {
	GameID   string     `json:"gameId"`
	Side     game.Side  `json:"side"`
	Opponent string     `json:"opponent"`
	Board    game.Board `json:"board"`
	IsBot    bool       `json:"isBot,omitempty"`
}

// LastMove identifies the disc placed by the most recent move.
type LastMove struct {
	Row  int       `json:"row"`
	Col  int       `json:"col"`
	Side game.Side `json:"side"`
}

// BoardUpdate is sent to both players after every successful move.
type BoardUpdate struct {
	Board    game.Board `json:"board"`
	LastMove LastMove   `json:"lastMove"`
}

// GameEnd is sent to both players exactly once when the match ends.
type GameEnd struct {
	Result match.ResultKind `json:"result"`
	Winner string           `json:"winner,omitempty"`
}

// Rejoined resynchronizes a reconnecting client.
type Rejoined struct {
	GameID string     `json:"gameId"`
	Board  game.Board `json:"board"`
	Side   game.Side  `json:"side"`
	Turn   game.Side  `json:"turn"`
}

// OpponentReconnected tells the other seat its opponent is back.
type OpponentReconnected struct {
	Username string `json:"username"`
}
