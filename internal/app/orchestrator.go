package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/core"
	"github.com/diggerconnect/relay/internal/domain"
	"github.com/diggerconnect/relay/internal/protocol"
)

// Orchestrator is the per-connection lifecycle controller. Every inbound
// event lands here after decoding; all registry and session mutations go
// through it. One connection produces events sequentially, so disconnect
// cleanup and an explicit leave for the same connection never interleave.
type Orchestrator struct {
	Conns    *ConnTable
	Sessions *SessionRegistry
	Presence *Presence
}

func NewOrchestrator(conns *ConnTable, sessions *SessionRegistry, presence *Presence) *Orchestrator {
	return &Orchestrator{Conns: conns, Sessions: sessions, Presence: presence}
}

// Create registers a fresh session. Creation does not imply membership;
// the creator joins with a separate joinSession call.
func (o *Orchestrator) Create(connID core.ConnID, name domain.SessionName) *domain.Session {
	sess := o.Sessions.Create(name, connID)
	o.Presence.SessionCreated(connID, sess.Session())
	o.Presence.DirectoryUpdated(o.Sessions.List())
	return sess.Session()
}

// Join binds the connection to the session. A connection is never a member
// of two sessions at once: a prior binding is left implicitly first.
// Joining the session it is already bound to is a benign no-op that only
// re-sends the confirmation.
func (o *Orchestrator) Join(connID core.ConnID, sid domain.SessionID, displayName string) error {
	if cur, ok := o.Conns.SessionOf(connID); ok && cur == sid {
		if s, found := o.Sessions.Get(sid); found {
			if m, member := s.Member(connID); member {
				log.Info().Str("module", "app.orchestrator").Str("conn", string(connID)).Str("session", string(sid)).Msg("duplicate join, confirming")
				o.Presence.SessionJoined(connID, s.Session(), m.Name)
				return nil
			}
		}
	}

	s, ok := o.Sessions.Get(sid)
	if !ok {
		log.Warn().Str("module", "app.orchestrator").Str("conn", string(connID)).Str("session", string(sid)).Msg("join: session not found")
		o.Presence.JoinFailed(connID, sid, ErrSessionNotFound.Error())
		return ErrSessionNotFound
	}

	member, err := domain.NewMember(displayName, string(connID))
	if err != nil {
		o.Presence.JoinFailed(connID, sid, err.Error())
		return err
	}
	signal, ok := o.Conns.Signal(connID)
	if !ok {
		// connection already gone, nothing to bind
		return nil
	}

	o.leave(connID)

	s.AddMember(connID, core.NewMemberSession(member, signal))
	o.Conns.UpdateSession(connID, sid)

	o.Presence.SessionJoined(connID, s.Session(), member.Name)
	o.Presence.MemberJoined(s, connID, member.Name)
	o.Presence.DirectoryUpdated(o.Sessions.List())
	log.Info().Str("module", "app.orchestrator").Str("conn", string(connID)).Str("session", string(sid)).Str("name", member.Name).Msg("joined session")
	return nil
}

// Leave removes the connection from its current session, if any.
func (o *Orchestrator) Leave(connID core.ConnID) bool {
	if !o.leave(connID) {
		return false
	}
	o.Presence.DirectoryUpdated(o.Sessions.List())
	return true
}

// leave performs the membership removal and the memberLeft notice, but no
// directory refresh; callers decide when the directory goes out.
func (o *Orchestrator) leave(connID core.ConnID) bool {
	sid, ok := o.Conns.SessionOf(connID)
	if !ok {
		return false
	}
	o.Conns.ClearSession(connID)
	s, ok := o.Sessions.Get(sid)
	if !ok {
		return false
	}
	ms, removed := s.RemoveMember(connID)
	if !removed {
		return false
	}
	if s.MemberCount() == 0 {
		// nobody left to notify
		o.Sessions.RemoveIfEmpty(sid)
	} else {
		o.Presence.MemberLeft(s, ms.Meta().Name)
	}
	log.Info().Str("module", "app.orchestrator").Str("conn", string(connID)).Str("session", string(sid)).Msg("left session")
	return true
}

// OnStroke relays an edit payload to the sender's session peers. A stroke
// from an unbound connection is expected under races and silently dropped.
// The payload is opaque: forwarded as received, never parsed or mutated.
func (o *Orchestrator) OnStroke(connID core.ConnID, payload json.RawMessage) {
	sid, ok := o.Conns.SessionOf(connID)
	if !ok {
		log.Debug().Str("module", "app.orchestrator").Str("conn", string(connID)).Msg("stray stroke discarded")
		return
	}
	s, ok := o.Sessions.Get(sid)
	if !ok {
		return
	}
	frame, err := protocol.Encode(protocol.NewStrokeRelayed(payload))
	if err != nil {
		log.Error().Err(err).Str("module", "app.orchestrator").Msg("encode stroke")
		return
	}
	res := s.Broadcast(connID, frame)
	if len(res.Dropped) > 0 {
		log.Warn().Str("module", "app.orchestrator").Str("session", string(sid)).Int("dropped", len(res.Dropped)).Msg("stroke dropped for slow members")
	}
}

// OnDisconnect behaves exactly as a leave before the connection is
// forgotten. The transport fires it exactly once per connection.
func (o *Orchestrator) OnDisconnect(connID core.ConnID) {
	left := o.leave(connID)
	o.Conns.Unbind(connID)
	if left {
		o.Presence.DirectoryUpdated(o.Sessions.List())
	}
}

// List answers a listSessions request; the snapshot goes to the requester
// only and changes no state.
func (o *Orchestrator) List(connID core.ConnID) {
	o.Presence.DirectoryTo(connID, o.Sessions.List())
}

// Directory exposes the snapshot for the REST surface.
func (o *Orchestrator) Directory() []core.SessionInfo {
	return o.Sessions.List()
}

// Shutdown tears the relay state down at process exit.
func (o *Orchestrator) Shutdown() {
	o.Conns.CloseAll()
	o.Sessions.Purge()
}
