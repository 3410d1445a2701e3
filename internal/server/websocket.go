package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/econet/internal/econet"
	"github.com/muurk/econet/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Outbound frames buffered per client before frames are dropped
	sendBufferSize = 16
)

// Frame types sent to websocket clients
const (
	FrameSnapshot = "snapshot"
)

// Frame is the JSON document pushed to websocket clients
type Frame struct {
	Type      string        `json:"type"`
	UID       string        `json:"uid"`
	Timestamp string        `json:"timestamp"`
	Params    econet.Params `json:"params"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// Hub tracks websocket clients and broadcasts snapshots to them.
// A client whose buffer is full misses frames instead of stalling the poller.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	last    []byte
	closed  bool
}

type wsClient struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the connection.
// The newest snapshot, if any, is queued immediately.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	client := &wsClient{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		remoteAddr: r.RemoteAddr,
	}
	if !h.register(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) register(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	logging.LogClient(c.remoteAddr, "websocket_connected")
	return true
}

// unregister removes c and closes its send channel exactly once
func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	if existed {
		close(c.send)
	}
	h.mu.Unlock()

	if existed {
		logging.LogClient(c.remoteAddr, "websocket_disconnected")
	}
}

// OnSnapshot broadcasts snap to every connected client
func (h *Hub) OnSnapshot(snap Snapshot) {
	data, err := json.Marshal(Frame{
		Type:      FrameSnapshot,
		UID:       snap.Identity.UID,
		Timestamp: snap.Timestamp.Format(time.RFC3339),
		Params:    snap.Params,
	})
	if err != nil {
		logging.Error("Failed to encode snapshot frame", zap.Error(err))
		return
	}
	h.Broadcast(data)
}

// OnFailure is a no-op; clients keep the last snapshot
func (h *Hub) OnFailure(error) {}

// Broadcast queues data for all clients and remembers it for new ones
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logging.Debug("Dropping frame for slow websocket client",
				zap.String("remote_addr", c.remoteAddr),
			)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// readPump discards client messages and keeps the read deadline fresh
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("Websocket read error",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
