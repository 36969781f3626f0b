package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/sirupsen/logrus"
)

// devOrigins are accepted in development in addition to FRONTEND_URL.
var devOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// AllowedOrigins lists the display origins accepted for cfg.
func AllowedOrigins(cfg *config.Config) []string {
	var origins []string
	if cfg.Environment == "development" {
		origins = append(origins, devOrigins...)
	}
	if cfg.FrontendURL != "" && !slices.Contains(origins, cfg.FrontendURL) {
		origins = append(origins, cfg.FrontendURL)
	}
	return origins
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config, log logrus.FieldLogger) gin.HandlerFunc {
	origins := AllowedOrigins(cfg)
	log.WithFields(logrus.Fields{
		"component":   "cors",
		"environment": cfg.Environment,
		"origins":     origins,
	}).Info("cors configured")

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Accept",
			"Cache-Control", "X-Requested-With",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 {
		// cors.New panics without any origin source.
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	} else {
		corsConfig.AllowOrigins = origins
	}
	return cors.New(corsConfig)
}

// WebSocketCORSCheck validates WebSocket upgrade origins
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	origins := AllowedOrigins(cfg)
	return func(c *gin.Context) {
		if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "WebSocket origin required"})
			return
		}

		allowed := slices.Contains(origins, origin)
		if cfg.Environment == "development" {
			allowed = allowed ||
				strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "WebSocket origin not allowed"})
			return
		}

		c.Next()
	}
}
