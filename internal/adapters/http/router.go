package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hushcall/hush/internal/adapters/signal"
	"github.com/hushcall/hush/internal/app"
	"github.com/hushcall/hush/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins an opaque token to each browser; it identifies
// a connection owner, never an authenticated identity.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
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
	r.Use(sessions.Sessions("HushSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Msg("router setup")

	h := &RoomHandlers{Orch: orch}
	api := r.Group("/api")

	api.POST("/rooms", h.CreateRoom)
	api.POST("/rooms/:id/join", h.JoinRoom)
	api.GET("/rooms/:id/status", h.RoomStatus)
	api.GET("/rooms/:id/can-start", h.CanStart)
	api.POST("/rooms/:id/end", h.EndRoom)
	api.DELETE("/rooms/:id", h.DeleteRoom)

	api.POST("/call/audio", h.ToggleAudio)
	api.POST("/call/video", h.ToggleVideo)

	ctl := signal.NewController(orch)
	ctl.ReadLimit = cfg.ReadLimit
	ctl.PingPeriod = cfg.PingPeriod
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws endpoint hit")
		ctl.Handle(ctx, c)
	})

	return r
}
