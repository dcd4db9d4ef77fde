package chat

import (
	"encoding/json"
	"net/http"
	"time"

	"CapIot.dashboard/internal/models"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

// Client is one websocket peer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.ChatMessage
}

// Handler upgrades HTTP requests to websocket chat sessions.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler. checkOrigin may be nil to accept every origin.
func NewHandler(hub *Hub, checkOrigin func(r *http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request.
		h.hub.logger.Warn("Websocket upgrade failed", "err", err)
		return
	}

	c := &Client{hub: h.hub, conn: conn, send: make(chan models.ChatMessage, sendBuffer)}
	if !h.hub.join(c) {
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump forwards every valid message to the hub. Invalid payloads are
// logged and skipped.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("Chat read failed", "err", err)
			}
			return
		}

		var msg models.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.Warn("Dropping invalid chat message", "err", err)
			continue
		}
		if !c.hub.Broadcast(msg) {
			return
		}
	}
}

// writePump owns all writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
