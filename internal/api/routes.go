package api

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/api/handlers"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/middleware"
	"github.com/playmatatu/snooker/internal/ws"
	"github.com/sirupsen/logrus"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, engine *game.Engine, hub *ws.Hub, cfg *config.Config, log logrus.FieldLogger) {
	router.Use(middleware.CORSMiddleware(cfg, log))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(engine))

		match := v1.Group("/match")
		{
			match.GET("", handlers.GetMatchState(engine))
			match.GET("/frame", handlers.GetFrame(engine))
			match.POST("/shot", handlers.TakeShot(engine, log))
			match.POST("/nominate", handlers.NominateColour(engine, log))
			match.POST("/pointer", handlers.MovePointer(engine, log))
			match.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleMatchWebSocket(hub))
		}
	}
}
