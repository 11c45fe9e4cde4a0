// internal/httpserver/server.go
//
// HTTP + websocket wiring for the Connect Four backend.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, JSON, CORS).
//   - Public endpoints: "/", "/health", "/leaderboard".
//   - "/ws": the realtime endpoint; upgrades, assigns a connection id, and
//     translates client frames into engine events (join, make_move,
//     reconnect_join). A closed socket becomes an engine Disconnect.
//
// Notes:
//   - The request Timeout middleware is applied to the REST routes only;
//     websocket connections are long-lived.
//   - CORS mirrors the original deployment: origin from CLIENT_ORIGIN, any
//     origin allowed for the websocket upgrade itself.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connect4/go-server/internal/session"
	"github.com/robalobadob/connect4/go-server/internal/store"
)

// Server bundles router, websocket hub, session engine and result store.
type Server struct {
	r       *chi.Mux
	hub     *Hub
	engine  *session.Engine
	results store.Store
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the game origin; access control is not
	// in scope, so the upgrade accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *session.Engine, hub *Hub, results store.Store) *Server {
	s := &Server{r: chi.NewRouter(), hub: hub, engine: engine, results: results}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(corsFromEnv)

	rest := s.r.With(chimw.Timeout(10*time.Second), jsonContentType)

	rest.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"connect4-go","endpoints":["/health","/leaderboard","/ws"]}`))
	})
	rest.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	rest.Get("/leaderboard", s.handleLeaderboard)

	s.r.Get("/ws", s.handleWS)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables CORS for the configured client origin.
// Uses CLIENT_ORIGIN env var; defaults to allowing any origin.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------------------------- REST endpoints --------------------------------

// handleLeaderboard returns the top 50 winners.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rows, err := s.results.Leaderboard(ctx, 50)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard query")
		http.Error(w, `{"error":"leaderboard_unavailable"}`, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []store.LeaderboardRow{}
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// ------------------------------ websocket ----------------------------------

// inbound is the client-to-server frame envelope.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinMsg struct {
	Username string `json:"username"`
}

type moveMsg struct {
	GameID string `json:"gameId"`
	Col    *int   `json:"col"`
}

type rejoinMsg struct {
	Username string `json:"username"`
	GameID   string `json:"gameId"`
}

// handleWS upgrades the connection and runs the read loop. Every socket gets
// a fresh connection id; durable identity is the display name the client
// sends with join/reconnect_join.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan frame, sendBuffer)}
	s.hub.add(c)
	go c.writePump()
	log.Info().Str("conn", c.id).Msg("socket connected")

	defer func() {
		log.Info().Str("conn", c.id).Msg("socket disconnected")
		s.hub.remove(c.id)
		s.engine.Disconnect(c.id)
	}()

	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn", c.id).Msg("websocket read failed")
			}
			return
		}
		s.dispatch(c.id, in)
	}
}

// dispatch routes one inbound frame to the engine.
func (s *Server) dispatch(connID string, in inbound) {
	switch in.Type {
	case "join":
		var m joinMsg
		if err := json.Unmarshal(in.Data, &m); err != nil || m.Username == "" {
			s.hub.Send(connID, session.MsgError, "username required")
			return
		}
		s.engine.Join(connID, m.Username)

	case "make_move":
		var m moveMsg
		if err := json.Unmarshal(in.Data, &m); err != nil || m.Col == nil {
			s.hub.Send(connID, session.MsgInvalidMove, "column required")
			return
		}
		s.engine.Move(connID, m.GameID, *m.Col)

	case "reconnect_join":
		var m rejoinMsg
		if err := json.Unmarshal(in.Data, &m); err != nil || m.Username == "" {
			s.hub.Send(connID, session.MsgError, "username required")
			return
		}
		s.engine.Reconnect(connID, m.Username, m.GameID)

	default:
		s.hub.Send(connID, session.MsgError, "unknown message type")
	}
}
