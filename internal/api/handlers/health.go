package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/game"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck reports whether the engine loop is still ticking. A stopped
// engine answers 503 so a supervisor can restart the process.
func HealthCheck(e *game.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		select {
		case <-e.Done():
			status, code = "stopped", http.StatusServiceUnavailable
		default:
		}
		frame := e.Frame()
		c.JSON(code, gin.H{
			"status":  status,
			"service": "snooker-bridge",
			"version": version,
			"uptime":  time.Since(startTime).String(),
			"tick":    frame.Tick,
			"phase":   frame.Phase,
		})
	}
}
