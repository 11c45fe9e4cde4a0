// internal/session/registry.go
//
// Registry of live matches. Indexes every match by id, by each bound
// connection id, and by each human display name (the reconnection key).
// Index entries for both players are added together at registration and
// dropped together at removal. The engine's mutex guards all access.

package session

import (
	"github.com/robalobadob/connect4/go-server/internal/game"
	"github.com/robalobadob/connect4/go-server/internal/match"
)

type registry struct {
	matches map[string]*match.Match
	byConn  map[string]string // connection id -> match id
	byName  map[string]string // display name -> match id
}

func newRegistry() *registry {
	return &registry{
		matches: make(map[string]*match.Match),
		byConn:  make(map[string]string),
		byName:  make(map[string]string),
	}
}

func (r *registry) register(m *match.Match) {
	r.matches[m.ID()] = m
	for _, side := range []game.Side{game.SideA, game.SideB} {
		p := m.Player(side)
		if p.Conn != "" {
			r.byConn[p.Conn] = m.ID()
		}
		if !p.IsBot {
			r.byName[p.Name] = m.ID()
		}
	}
}

func (r *registry) byID(id string) *match.Match {
	return r.matches[id]
}

func (r *registry) lookupConn(conn string) *match.Match {
	if id, ok := r.byConn[conn]; ok {
		return r.matches[id]
	}
	return nil
}

func (r *registry) lookupName(name string) *match.Match {
	if id, ok := r.byName[name]; ok {
		return r.matches[id]
	}
	return nil
}

// bindConn points a (new) connection id at a match, used on reconnection.
func (r *registry) bindConn(conn, matchID string) {
	r.byConn[conn] = matchID
}

func (r *registry) dropConn(conn string) {
	delete(r.byConn, conn)
}

// remove drops the match and every index entry pointing at it. Idempotent:
// removing an unknown id reports false and changes nothing. Entries are only
// deleted when they still point at this match, so a name rebound to a newer
// match survives.
func (r *registry) remove(id string) bool {
	if _, ok := r.matches[id]; !ok {
		return false
	}
	delete(r.matches, id)
	for conn, mid := range r.byConn {
		if mid == id {
			delete(r.byConn, conn)
		}
	}
	for name, mid := range r.byName {
		if mid == id {
			delete(r.byName, name)
		}
	}
	return true
}
