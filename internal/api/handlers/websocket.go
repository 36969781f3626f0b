package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/ws"
)

// HandleMatchWebSocket streams frames to a display and accepts its pointer
// events.
func HandleMatchWebSocket(hub *ws.Hub) gin.HandlerFunc {
	return ws.HandleWebSocket(hub)
}
