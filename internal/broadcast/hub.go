// Package broadcast delivers greetings to chat clients: a websocket hub, an
// optional NATS publisher and a fanout over both.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/almanac/internal/greeting"
	"github.com/talgya/almanac/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// DefaultClientQueue is the number of messages buffered per client.
	DefaultClientQueue = 32
)

// Envelope is every message exchanged over the websocket.
type Envelope struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Text  string `json:"text,omitempty"`
	Plain string `json:"plain,omitempty"`

	// look
	X   float64 `json:"x,omitempty"`
	Z   float64 `json:"z,omitempty"`
	Yaw float64 `json:"yaw,omitempty"`
}

// Presence tracks the participants behind websocket connections.
type Presence interface {
	Join(ctx context.Context, name string) (string, error)
	Move(ctx context.Context, id string, x, z, yaw float64) error
	Leave(ctx context.Context, id string)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Hub fans chat messages out to connected websocket clients. A client whose
// queue is full misses the message rather than stalling the broadcaster.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	presence Presence
	metrics  *metrics.Metrics
	queue    int
	dropped  atomic.Uint64
	upgrader websocket.Upgrader
}

// NewHub creates a Hub. presence may be nil, in which case connections are
// listeners only.
func NewHub(presence Presence, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:  make(map[*client]struct{}),
		presence: presence,
		metrics:  m,
		queue:    DefaultClientQueue,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// Broadcast sends msg to every client as a chat envelope.
func (h *Hub) Broadcast(msg string) {
	data, err := json.Marshal(Envelope{Type: "chat", Text: msg, Plain: greeting.StripFormatting(msg)})
	if err != nil {
		slog.Error("encode chat message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
			h.metrics.Dropped("websocket")
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many client deliveries were skipped.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeWS upgrades the request and streams chat to the client. The optional
// name query parameter names the joining participant.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.queue)}
	if h.presence != nil {
		id, err := h.presence.Join(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			slog.Warn("participant join failed", "error", err)
			conn.Close()
			return
		}
		c.id = id
	}

	welcome, _ := json.Marshal(Envelope{Type: "welcome", ID: c.id})
	c.send <- welcome
	h.add(c)
	slog.Info("chat client connected", "participant", c.id, "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		if h.presence != nil && c.id != "" {
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			h.presence.Leave(ctx, c.id)
			cancel()
		}
		slog.Info("chat client disconnected", "participant", c.id)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			continue
		}
		switch env.Type {
		case "look":
			if h.presence == nil || c.id == "" {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			if err := h.presence.Move(ctx, c.id, env.X, env.Z, env.Yaw); err != nil {
				slog.Debug("participant move failed", "participant", c.id, "error", err)
			}
			cancel()
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
