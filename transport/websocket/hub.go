package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks live connections by id and fans server events out to them.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "websocket_hub"),
		clients: make(map[string]*client),
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.id] = c
}

// unregister removes the client and closes its send queue once.
func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.clients[c.id]; ok && current == c {
		delete(that.clients, c.id)
		close(c.send)
	}
}

func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients)
}

func (that *Hub) ToConnections(connIDs []string, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, id := range connIDs {
		if c, ok := that.clients[id]; ok {
			that.enqueue(c, data)
		}
	}
}

func (that *Hub) ToAll(event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, c := range that.clients {
		that.enqueue(c, data)
	}
}

// reply queues a direct answer for one client.
func (that *Hub) reply(c *client, action string, payload any) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode reply", "action", action, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if current, ok := that.clients[c.id]; ok && current == c {
		that.enqueue(c, data)
	}
}

// enqueue must be called with the read lock held.
func (that *Hub) enqueue(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		that.logger.Warn("send queue is full, dropping connection", "conn_id", c.id)
		go that.drop(c)
	}
}

func (that *Hub) drop(c *client) {
	that.unregister(c)
	_ = c.conn.Close()
}

// writePump is the only writer of the connection.
func (that *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Debug("failed to write message", "conn_id", c.id, "error", err)
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
