package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Hub pushes notifications to connected panel clients over WebSocket.
// A broadcast to a dead client drops that client; it never blocks or
// fails the pipeline.
type Hub struct {
	upgrader websocket.Upgrader

	// writeMu serializes broadcasts; a websocket conn allows only one
	// concurrent writer.
	writeMu sync.Mutex

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates a Hub. checkOrigin guards the upgrade handshake.
func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP upgrades the connection and registers the panel client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("notify: websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	zap.L().Debug("notify: panel client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Drain reads to observe the close handshake.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a notification to every connected client.
func (h *Hub) Broadcast(n Notification) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
		if err := c.WriteJSON(n); err != nil {
			zap.L().Debug("notify: dropping dead panel client", zap.Error(err))
			h.drop(c)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close() //nolint:errcheck
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.mu.Unlock()

	for _, c := range conns {
		c.Close() //nolint:errcheck
	}
}

// Success implements Notifier over the hub.
func (h *Hub) Success(_ context.Context, msg string) {
	h.Broadcast(Notification{Level: LevelSuccess, Message: msg, At: time.Now().UTC()})
}

// Failure implements Notifier over the hub.
func (h *Hub) Failure(_ context.Context, msg string) {
	h.Broadcast(Notification{Level: LevelError, Message: msg, At: time.Now().UTC()})
}

// Info implements Notifier over the hub.
func (h *Hub) Info(_ context.Context, msg string) {
	h.Broadcast(Notification{Level: LevelInfo, Message: msg, At: time.Now().UTC()})
}
