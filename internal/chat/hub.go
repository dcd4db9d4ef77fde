// Package chat relays chat messages between websocket peers.
package chat

import (
	"context"

	"CapIot.dashboard/internal/logging"
	"CapIot.dashboard/internal/models"
	"github.com/charmbracelet/log"
)

// Hub keeps the set of connected clients and fans messages out to all of them.
// All state is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.ChatMessage
	counts     chan chan int
	done       chan struct{}
	logger     *log.Logger
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.ChatMessage, 64),
		counts:     make(chan chan int),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("Chat client connected", "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Debug("Chat client disconnected", "clients", len(h.clients))
			}
		case reply := <-h.counts:
			reply <- len(h.clients)
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("Dropping slow chat client")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// Broadcast queues msg for every connected client. It returns false once the
// hub has stopped.
func (h *Hub) Broadcast(msg models.ChatMessage) bool {
	select {
	case h.broadcast <- msg:
		return true
	case <-h.done:
		return false
	}
}

// Clients returns the number of connected clients, or 0 once the hub stopped.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.counts <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
