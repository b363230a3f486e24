package app

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/core"
	"github.com/diggerconnect/relay/internal/domain"
)

// ErrSessionNotFound means a join targeted an id absent from the registry.
// Recoverable, reported to the requester only.
var ErrSessionNotFound = errors.New("session not found")

// SessionRegistry owns the live session set for one server process.
// It is an explicit object passed into the orchestrator, never a
// package-level singleton, so tests can run several instances.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]core.SessionService
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[domain.SessionID]core.SessionService)}
}

// Create always succeeds and returns a session with a fresh unique id.
func (r *SessionRegistry) Create(name domain.SessionName, creator core.ConnID) core.SessionService {
	sess := core.NewSessionService(&domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		Name:      name,
		CreatedAt: time.Now(),
		CreatedBy: string(creator),
	})
	r.mu.Lock()
	r.sessions[sess.Session().ID] = sess
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("session", string(sess.Session().ID)).Str("name", string(name)).Msg("session created")
	return sess
}

func (r *SessionRegistry) Get(id domain.SessionID) (core.SessionService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// RemoveIfEmpty deletes the session only when it has no members.
// Idempotent: a no-op for absent ids or non-empty sessions.
func (r *SessionRegistry) RemoveIfEmpty(id domain.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.MemberCount() != 0 {
		return false
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("session", string(id)).Msg("empty session removed")
	return true
}

// List returns a directory snapshot, stable by session id.
func (r *SessionRegistry) List() []core.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionInfo, 0, len(r.sessions))
	for id, s := range r.sessions {
		out = append(out, core.SessionInfo{ID: id, Name: s.Session().Name, MemberCount: s.MemberCount()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Purge drops every session. Used at process teardown.
func (r *SessionRegistry) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.sessions {
		delete(r.sessions, id)
	}
	log.Info().Str("module", "app.registry").Msg("registry purged")
}
