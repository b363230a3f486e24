package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/core"
	"github.com/diggerconnect/relay/internal/domain"
	"github.com/diggerconnect/relay/internal/protocol"
)

func (ctl *Controller) handleCreate(connID core.ConnID, c *wsSignalConn, data []byte) {
	p, err := protocol.DecodeCreateSession(data)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	raw := p.RequestedName
	if len(raw) > domain.MaxSessionNameLen {
		raw = raw[:domain.MaxSessionNameLen]
	}
	sess := ctl.Orch.Create(connID, domain.SessionName(raw))
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("session", string(sess.ID)).Str("name", raw).Msg("create session")
}

func (ctl *Controller) handleJoin(connID core.ConnID, c *wsSignalConn, data []byte) {
	if !ctl.joinLimiter.Allow(connID) {
		log.Warn().Str("module", "signal").Str("conn", string(connID)).Msg("join rate limited")
		ctl.sendError(c, "rate_limited")
		return
	}
	p, err := protocol.DecodeJoinSession(data)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("session", p.SessionID).Msg("join")
	// Failures are reported to the requester by presence; nothing to do here.
	_ = ctl.Orch.Join(connID, domain.SessionID(p.SessionID), p.DisplayName)
}

func (ctl *Controller) handleLeave(connID core.ConnID) {
	log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("leave")
	ctl.Orch.Leave(connID)
}
