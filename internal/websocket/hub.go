// Package websocket streams parse progress to connected clients. A Hub
// fans every progress update out to all registered clients; each client
// owns a single gorilla/websocket connection with a buffered send queue
// so one slow consumer never blocks the broadcaster.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// Message is the wire envelope for every frame the hub sends.
type Message struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Frame types.
const (
	TypeConnection = "connection"
	TypeProgress   = "progress"
	TypeError      = "error"
)

// Hub maintains the set of active clients and broadcasts progress
// updates to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	mu      sync.Mutex
	running bool

	logger *slog.Logger
}

// NewHub creates a hub. Call Run (usually in a goroutine) before serving
// connections.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Run processes register, unregister, and broadcast events until
// Shutdown is called.
func (h *Hub) Run() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.running = false
			h.mu.Unlock()
			h.logger.Info("hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client registered",
				slog.String("client_id", client.id),
				slog.Int("clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client unregistered",
				slog.String("client_id", client.id),
				slog.Int("clients", count))

		case payload := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Send queue full; drop the client rather than stall.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Shutdown stops the hub loop and disconnects all clients.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()
	if running {
		close(h.quit)
	}
}

// BroadcastProgress sends one progress update to every connected client.
func (h *Hub) BroadcastProgress(update domain.ProgressUpdate) {
	h.send(Message{Type: TypeProgress, Data: update})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) send(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast message", slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("broadcast queue full; dropping message",
			slog.String("type", msg.Type))
	}
}
