package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/sirupsen/logrus"
)

// Inbound message types.
const (
	MessagePointerMove    = "pointer_move"
	MessagePointerPress   = "pointer_press"
	MessagePointerRelease = "pointer_release"
)

// Outbound message types.
const (
	MessageFrame  = "frame"
	MessageState  = "state"
	MessageResult = "result"
	MessageError  = "error"
)

// PointerData carries device coordinates for a pointer event.
type PointerData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p PointerData) vec() game.Vec2 { return game.V(p.X, p.Y) }

// HandleWebSocket upgrades a display connection and attaches it to h.
func HandleWebSocket(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.WithError(err).Warn("upgrade failed")
			return
		}

		client := h.newClient(conn)
		select {
		case h.register <- client:
		case <-h.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "engine stopped"),
				time.Now().Add(writeWait))
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump decodes pointer events until the connection drops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("client", c.id).Warn("unexpected close")
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage maps a pointer event onto an engine command. Presses only
// count as nomination clicks and releases only fire shots; events that do
// not apply to the current phase are ignored.
func (c *Client) handleMessage(msg WSMessage) {
	var p PointerData
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		c.sendError("invalid pointer data")
		return
	}

	var (
		done <-chan game.CommandResult
		err  error
	)
	phase := c.hub.engine.State().Phase
	switch msg.Type {
	case MessagePointerMove:
		_, err = c.hub.engine.AimAt(p.vec())
	case MessagePointerPress:
		if phase != game.PhaseColourSelection {
			return
		}
		done, err = c.hub.engine.Nominate(p.vec())
	case MessagePointerRelease:
		if phase != game.PhaseAwaitingShot {
			return
		}
		done, err = c.hub.engine.Shoot(p.vec())
	default:
		c.sendError("unknown message type: " + msg.Type)
		return
	}

	if err != nil {
		c.sendError(err.Error())
		return
	}
	if done != nil {
		go c.awaitResult(done)
	}
}

func (c *Client) awaitResult(done <-chan game.CommandResult) {
	res := <-done
	if res.Err != nil {
		if !errors.Is(res.Err, game.ErrEngineStopped) {
			c.sendError(res.Err.Error())
		}
		return
	}
	c.hub.log.WithFields(logrus.Fields{"client": c.id, "command": res.Kind}).Debug("command applied")
	c.hub.SendTo(c.id, outbound{Type: MessageResult, Data: res})
}
