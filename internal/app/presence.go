package app

import (
	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/core"
	"github.com/diggerconnect/relay/internal/domain"
	"github.com/diggerconnect/relay/internal/protocol"
)

// Presence turns membership changes into outbound notifications:
// confirmations to the requester, join/leave notices to session members,
// and the global session directory to every connected client.
type Presence struct {
	Conns *ConnTable
}

func NewPresence(conns *ConnTable) *Presence {
	return &Presence{Conns: conns}
}

func (p *Presence) SessionCreated(to core.ConnID, sess *domain.Session) {
	p.sendTo(to, protocol.NewSessionCreated(string(sess.ID), string(sess.Name)))
}

func (p *Presence) SessionJoined(to core.ConnID, sess *domain.Session, userName string) {
	p.sendTo(to, protocol.NewSessionJoined(string(sess.ID), string(sess.Name), userName))
}

func (p *Presence) JoinFailed(to core.ConnID, sid domain.SessionID, reason string) {
	p.sendTo(to, protocol.NewSessionJoinFailed(string(sid), reason))
}

// MemberJoined notifies every member of the session except the joiner.
func (p *Presence) MemberJoined(s core.SessionService, joiner core.ConnID, userName string) {
	sess := s.Session()
	frame, err := protocol.Encode(protocol.NewMemberJoined(userName, string(sess.ID), string(sess.Name)))
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("encode memberJoined")
		return
	}
	s.Broadcast(joiner, frame)
}

// MemberLeft notifies the remaining members. The leaver is already gone
// from the set, so no exclusion is needed.
func (p *Presence) MemberLeft(s core.SessionService, userName string) {
	frame, err := protocol.Encode(protocol.NewMemberLeft(userName, string(s.Session().ID)))
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("encode memberLeft")
		return
	}
	s.Broadcast("", frame)
}

// DirectoryUpdated pushes the session directory to all connected clients,
// bound to a session or not. The lobby list is a process-global view.
func (p *Presence) DirectoryUpdated(list []core.SessionInfo) {
	frame, err := protocol.Encode(protocol.NewDirectoryUpdated(directoryEntries(list)))
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("encode directory")
		return
	}
	for _, sig := range p.Conns.Signals() {
		if err := sig.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.presence").Msg("directory send dropped")
		}
	}
}

// DirectoryTo answers a listSessions request: the snapshot goes to the
// requester only.
func (p *Presence) DirectoryTo(to core.ConnID, list []core.SessionInfo) {
	p.sendTo(to, protocol.NewDirectoryUpdated(directoryEntries(list)))
}

func (p *Presence) sendTo(to core.ConnID, v any) {
	sig, ok := p.Conns.Signal(to)
	if !ok {
		return
	}
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("encode event")
		return
	}
	if err := sig.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.presence").Str("conn", string(to)).Msg("send dropped")
	}
}

func directoryEntries(list []core.SessionInfo) []protocol.DirectoryEntry {
	out := make([]protocol.DirectoryEntry, 0, len(list))
	for _, info := range list {
		out = append(out, protocol.DirectoryEntry{
			SessionID:   string(info.ID),
			DisplayName: string(info.Name),
			MemberCount: info.MemberCount,
		})
	}
	return out
}
