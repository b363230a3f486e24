package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/core"
	"github.com/diggerconnect/relay/internal/protocol"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump drives the whole connection lifecycle: when the read loop
// exits, for any reason, the orchestrator runs the leave-equivalent
// cleanup exactly once.
func (ctl *Controller) readPump(ctx context.Context, connID core.ConnID, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(connID)
		ctl.joinLimiter.Forget(connID)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(connID, c, data)
		}
	}
}

func (ctl *Controller) handleEvent(connID core.ConnID, c *wsSignalConn, data []byte) {
	evtType, err := protocol.DecodeType(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad envelope")
		ctl.sendError(c, err.Error())
		return
	}

	switch evtType {
	case protocol.EventCreateSession:
		ctl.handleCreate(connID, c, data)
	case protocol.EventJoinSession:
		ctl.handleJoin(connID, c, data)
	case protocol.EventLeaveSession:
		ctl.handleLeave(connID)
	case protocol.EventSendStroke:
		ctl.handleStroke(connID, c, data)
	case protocol.EventListSessions:
		ctl.Orch.List(connID)
	case protocol.EventPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", evtType).Msg("unknown event")
		ctl.sendError(c, "unknown event type")
	}
}

func (ctl *Controller) sendJSON(c *wsSignalConn, v any) {
	b, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *wsSignalConn, reason string) {
	ctl.sendJSON(c, protocol.NewError(reason))
}
