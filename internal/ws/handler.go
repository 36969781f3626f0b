package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client is one connected display.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte
}

// Hub streams engine frames to every connected display and turns pointer
// events from displays into engine commands.
type Hub struct {
	engine *game.Engine
	log    logrus.FieldLogger

	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	nextID atomic.Uint64
	done   chan struct{}
}

// NewHub creates a Hub bound to engine. Call Run to start it.
func NewHub(engine *game.Engine, log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		engine:     engine,
		log:        log.WithField("component", "ws"),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// outbound is the envelope for server to display messages.
type outbound struct {
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Run forwards frames until ctx is done or the engine shuts down. Every
// client is disconnected on return.
func (h *Hub) Run(ctx context.Context) error {
	frames, cancel := h.engine.Subscribe()
	defer cancel()
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			count := len(h.clients)
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"client": client.id, "clients": count}).Info("display connected")
			h.SendTo(client.id, outbound{Type: MessageState, Data: h.engine.State()})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			h.log.WithField("client", client.id).Info("display disconnected")

		case f, ok := <-frames:
			if !ok {
				h.log.Info("engine stopped, closing displays")
				return nil
			}
			h.Broadcast(outbound{Type: MessageFrame, Data: f})
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	close(h.done)
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// Clients returns the number of connected displays.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every display. Displays with a full buffer
// miss the message.
func (h *Hub) Broadcast(message any) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Error("marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.log.WithField("client", client.id).Debug("send buffer full, dropping message")
		}
	}
}

// SendTo sends a message to a single display.
func (h *Hub) SendTo(id string, message any) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Error("marshal message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[id]
	if !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		h.log.WithField("client", id).Debug("send buffer full, dropping message")
	}
}

func (h *Hub) newClient(conn *websocket.Conn) *Client {
	return &Client{
		hub:  h,
		conn: conn,
		id:   fmt.Sprintf("display-%d", h.nextID.Add(1)),
		send: make(chan []byte, sendBuffer),
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.WithError(err).WithField("client", c.id).Debug("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.log.WithError(err).WithField("client", c.id).Debug("ping failed")
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.hub.SendTo(c.id, outbound{Type: MessageError, Message: message})
}
