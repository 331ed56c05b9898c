package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/adapters/signal"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/auth"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/config"
)

// SetupRouter wires the HTTP surface: public auth endpoints plus the
// authenticated signaling channel and room listing.
func SetupRouter(ctx context.Context, cfg *config.Config, handlers *auth.Handlers, tokens *auth.TokenService, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SignalingSessions", store))

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")

	api := r.Group("/api")

	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)

	authorized := api.Group("")
	authorized.Use(auth.Middleware(tokens))

	authorized.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": ctl.Router.RoomList()})
	})

	authorized.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("identity", c.GetString(auth.IdentityKey)).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}
