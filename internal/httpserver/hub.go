// internal/httpserver/hub.go
//
// Websocket client hub. Tracks live connections by id and implements
// session.Notifier: the engine addresses outbound messages to a connection
// id, the hub finds the socket and queues the frame.
//
// Each client owns a buffered send channel drained by a single write pump
// goroutine, so engine callers never block on a slow socket. A client that
// falls too far behind has its frame dropped (and logged) rather than
// stalling the match.

package httpserver

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

// frame is the outbound wire envelope.
type frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan frame
}

// Hub is the set of live websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// Send queues one message for a connection. Unknown ids are dropped
// silently: the engine may legitimately address a connection that just
// closed.
// The read lock is held across the channel send so remove (which closes the
// channel under the write lock) cannot interleave with it.
func (h *Hub) Send(conn, msgType string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c := h.clients[conn]
	if c == nil {
		return
	}
	select {
	case c.send <- frame{Type: msgType, Data: data}:
	default:
		log.Warn().Str("conn", conn).Str("msg", msgType).Msg("client send buffer full, dropping frame")
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if ok {
		close(c.send)
	}
}

// writePump drains the client's send channel onto the socket. Runs in its
// own goroutine per client; exits when the channel closes.
func (c *client) writePump() {
	for f := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(f); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("websocket write failed")
			break
		}
	}
	_ = c.conn.Close()
}
