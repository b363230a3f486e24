// Package signal is the websocket transport adapter: it upgrades
// connections, owns the read/write pumps, and routes decoded events into
// the orchestrator.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/app"
	"github.com/diggerconnect/relay/internal/config"
	"github.com/diggerconnect/relay/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// WSConn is an indirection over *websocket.Conn to ease testing.
type WSConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	Close() error
}

type Controller struct {
	Orch        *app.Orchestrator
	Cfg         *config.Config
	joinLimiter *JoinRateLimiter
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{
		Orch:        orch,
		Cfg:         cfg,
		joinLimiter: NewJoinRateLimiter(cfg.JoinLimit, cfg.JoinWindow),
	}
}

// wsSignalConn is the transport endpoint a session fans out to.
// Sends are fire-and-forget: a full buffer returns ErrBackpressure
// instead of blocking the relay.
type wsSignalConn struct {
	conn WSConn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSSignalConn(conn WSConn, buffer int) *wsSignalConn {
	return &wsSignalConn{conn: conn, send: make(chan core.Frame, buffer)}
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection pumps.
// Every upgrade gets a fresh connection id; the client token cookie is
// only a stable tag for tracing reconnects in the logs.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	connID := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWSSignalConn(ws, ctl.Cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Conns.Bind(connID, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, connID, conn)
}
