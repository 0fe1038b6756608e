package http

import (
	"context"

	"github.com/dkeye/viewing/internal/adapters/signal"
	"github.com/dkeye/viewing/internal/app/relay"
	"github.com/dkeye/viewing/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionCookie = "ViewingSessions"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IdentityMiddleware copies the user id placed in the cookie session by the
// upstream login flow into the request context.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := sessions.Default(c).Get(signal.UserIDKey).(string); ok && uid != "" {
			c.Set(signal.UserIDKey, uid)
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, rl *relay.Relay, store Pinger) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cs := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions(sessionCookie, cs))
	r.Use(IdentityMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &sessionHandlers{relay: rl}
	ctrl := signal.NewSignalWSController(rl, cfg)

	r.GET("/healthz", healthz(store))

	api := r.Group("/api")
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("user", c.GetString(signal.UserIDKey)).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})
	api.GET("/sessions", h.list)
	api.GET("/sessions/:id", h.get)
	api.DELETE("/sessions/:id", h.end)

	return r
}
