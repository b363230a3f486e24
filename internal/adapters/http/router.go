// Package http wires the gin router: websocket endpoint, liveness check
// and a small read-only REST surface over the session directory.
package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/adapters/signal"
	"github.com/diggerconnect/relay/internal/app"
	"github.com/diggerconnect/relay/internal/config"
)

const Version = "1.0.0"

// ClientTokenMiddleware assigns every browser a stable token, kept in the
// cookie-backed session store. Connections still get a fresh id per
// websocket upgrade; the token only ties reconnects together in the logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get("client_token").(string)
		if token == "" {
			token = uuid.NewString()
			s.Set("client_token", token)
			if err := s.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("client token save")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("DiggerConnect", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "ver": Version})
	})

	api := r.Group("/api")

	// GET /api/sessions — directory snapshot, same rows as directoryUpdated
	api.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": orch.Directory()})
	})

	ctrl := signal.NewController(orch, cfg)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
