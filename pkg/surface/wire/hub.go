package wire

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	luxerr "github.com/vango-dev/lux/internal/errors"
)

const writeTimeout = 10 * time.Second

// client is one websocket connection. Writes are serialized per client.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages the websocket clients of a Surface.
type Hub struct {
	surface  *Surface
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

func newHub(s *Surface) *Hub {
	return &Hub{
		surface: s,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     s.checkOrigin,
		},
	}
}

// checkOrigin accepts requests without an Origin header, requests whose
// origin host is the request host, and origins listed with
// WithAllowedOrigins. A listed "*" accepts every origin.
func (s *Surface) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	s.logger.Warn("wire: rejected websocket origin",
		"code", luxerr.CodeWireOrigin, "origin", origin, "host", r.Host)
	return false
}

// HandleWebSocket upgrades the request, sends a snapshot frame and then
// reads event frames until the client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.surface.logger.Warn("wire: upgrade failed", "code", luxerr.CodeWireConnection, "error", err)
		return
	}
	c := &client{conn: conn}
	if err := h.surface.attach(c); err != nil {
		h.drop(c)
		return
	}

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			break
		}
		if err := h.surface.receive(f); err != nil {
			h.surface.logger.Warn("wire: rejected frame", "code", luxerr.CodeWireFrame, "type", string(f.Type))
			h.send(c, Frame{Type: FrameError, Error: err.Error()})
		}
	}
	h.drop(c)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) send(c *client, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

// broadcast sends a frame to all connected clients.
func (h *Hub) broadcast(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.surface.logger.Debug("wire: dropping client", "code", luxerr.CodeWireConnection, "error", err)
			h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
