package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection wraps one websocket client. Inbound frames are handled on the
// read goroutine; outbound frames go through the buffered send channel and
// the write pump. A write failure closes the socket, which surfaces as a
// read error and triggers the disconnect path exactly once.
type Connection struct {
	ID  uuid.UUID
	ws  *websocket.Conn
	hub *Hub

	send   chan []byte
	mu     sync.Mutex // guards closed and sends into the channel
	closed bool

	// playerID is assigned by the hub when the client registers. It is
	// only touched from this connection's read goroutine.
	playerID string

	logger *zap.Logger
}

// NewConnection wires a fresh websocket to the hub.
func NewConnection(ws *websocket.Conn, hub *Hub, logger *zap.Logger) *Connection {
	return &Connection{
		ID:     uuid.New(),
		ws:     ws,
		hub:    hub,
		send:   make(chan []byte, 256),
		logger: logger,
	}
}

// ReadPump handles inbound messages from the client. It owns the disconnect
// path: whatever ends the loop, the hub gets exactly one HandleDisconnect.
func (c *Connection) ReadPump() {
	defer func() {
		c.hub.HandleDisconnect(c)
		c.closeSend()
		c.ws.Close()
	}()

	for {
		msgType, raw, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Debug("read loop ended",
				zap.String("connection_id", c.ID.String()),
				zap.Error(err))
			return
		}

		// We only handle text frames
		if msgType == websocket.TextMessage {
			c.hub.HandleMessage(c, raw)
		}
	}
}

// WritePump handles outbound messages to the client.
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			c.logger.Debug("write error",
				zap.String("connection_id", c.ID.String()),
				zap.Error(err))
			return
		}
	}
}

// Send marshals v and queues it for delivery. Best effort: a full buffer or
// an already-closed connection drops the frame rather than blocking a game
// handler on a slow peer.
func (c *Connection) Send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("marshaling outbound message", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("outbound buffer full, dropping frame",
			zap.String("connection_id", c.ID.String()))
	}
}

func (c *Connection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
