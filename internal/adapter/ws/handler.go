// Package ws implements the WebSocket adapter streaming fleet events
// (task results, status changes, escalations) to connected dashboards.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// sendQueueSize bounds the per-client backlog. A client that cannot keep
// up with the event rate is disconnected rather than stalling broadcasts.
const sendQueueSize = 32

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// client is one connected dashboard with its own outbound queue.
type client struct {
	ws     *websocket.Conn
	send   chan []byte
	cancel context.CancelFunc
}

// Hub tracks connected clients and fans events out to them. Writes go
// through per-client queues so one slow consumer never blocks the
// scheduler's broadcast path.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
	}
}

// HandleWS upgrades the request and starts the client's read and write loops.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &client{
		ws:     ws,
		send:   make(chan []byte, sendQueueSize),
		cancel: cancel,
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("websocket connected", "remote", r.RemoteAddr)

	go h.writeLoop(ctx, c)
	go h.readLoop(ctx, c)
}

// readLoop consumes inbound frames (pings, client closes) and tears the
// client down on the first error.
func (h *Hub) readLoop(ctx context.Context, c *client) {
	defer func() {
		h.remove(c)
		_ = c.ws.Close(websocket.StatusNormalClosure, "")
	}()
	for {
		if _, _, err := c.ws.Read(ctx); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.send:
			if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
				slog.Debug("websocket write failed", "error", err)
				h.remove(c)
				return
			}
		}
	}
}

// Broadcast queues a message for every connected client. Clients whose
// queue is full are dropped.
func (h *Hub) Broadcast(_ context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("websocket client too slow, disconnecting")
		h.remove(c)
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		c.cancel()
		delete(h.clients, c)
		slog.Info("websocket disconnected")
	}
}
