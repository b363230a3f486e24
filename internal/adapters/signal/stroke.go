package signal

import (
	"github.com/diggerconnect/relay/internal/core"
	"github.com/diggerconnect/relay/internal/protocol"
)

func (ctl *Controller) handleStroke(connID core.ConnID, c *wsSignalConn, data []byte) {
	p, err := protocol.DecodeSendStroke(data)
	if err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	ctl.Orch.OnStroke(connID, p.Payload)
}
