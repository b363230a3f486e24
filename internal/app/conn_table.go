package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/core"
	"github.com/diggerconnect/relay/internal/domain"
)

type connEntry struct {
	sessionID domain.SessionID // empty while unbound
	signal    core.SignalConnection
	cancel    context.CancelFunc
}

// ConnTable tracks every live connection and its current session binding.
// A connection carries at most one binding at a time; the binding is set
// on a successful join and cleared on leave/disconnect.
type ConnTable struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewConnTable() *ConnTable {
	return &ConnTable{conns: make(map[core.ConnID]*connEntry)}
}

func (t *ConnTable) Bind(id core.ConnID, signal core.SignalConnection, cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[id] = &connEntry{signal: signal, cancel: cancel}
	log.Info().Str("module", "app.conns").Str("conn", string(id)).Msg("connection bound")
}

func (t *ConnTable) Unbind(id core.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, id)
	log.Info().Str("module", "app.conns").Str("conn", string(id)).Msg("connection unbound")
}

func (t *ConnTable) Signal(id core.ConnID) (core.SignalConnection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.conns[id]; ok {
		return e.signal, true
	}
	return nil, false
}

// SessionOf reports the session the connection is currently a member of.
func (t *ConnTable) SessionOf(id core.ConnID) (domain.SessionID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.conns[id]
	if !ok || e.sessionID == "" {
		return "", false
	}
	return e.sessionID, true
}

func (t *ConnTable) UpdateSession(id core.ConnID, sid domain.SessionID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.conns[id]
	if !ok {
		return false
	}
	e.sessionID = sid
	log.Info().Str("module", "app.conns").Str("conn", string(id)).Str("session", string(sid)).Msg("session binding updated")
	return true
}

func (t *ConnTable) ClearSession(id core.ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.conns[id]; ok {
		e.sessionID = ""
	}
}

// Signals snapshots every connected transport, bound or not.
// Used for the process-global directory broadcast.
func (t *ConnTable) Signals() []core.SignalConnection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(t.conns))
	for _, e := range t.conns {
		out = append(out, e.signal)
	}
	return out
}

// CloseAll cancels and closes every connection. Used at process teardown.
func (t *ConnTable) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, e := range t.conns {
		if e.cancel != nil {
			e.cancel()
		}
		e.signal.Close()
		delete(t.conns, id)
	}
	log.Info().Str("module", "app.conns").Msg("all connections closed")
}
