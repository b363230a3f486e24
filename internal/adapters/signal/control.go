package signal

import "github.com/diggerconnect/relay/internal/protocol"

func (ctl *Controller) handlePing(c *wsSignalConn) {
	ctl.sendJSON(c, protocol.NewPong())
}
