package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"bookshelf/pkg/logger"
)

// Client wraps one WebSocket connection used to push live snapshots to
// a browser. Writes go through a buffered channel so subscription
// callbacks never block on a slow connection; a full buffer drops the
// update, the next snapshot supersedes it anyway.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, 8),
		done: make(chan struct{}),
	}
}

// SendJSON queues a payload for delivery. Safe to call from
// subscription callbacks.
func (c *Client) SendJSON(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal websocket payload: %v", err)
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		logger.Debug("Dropping websocket update, client buffer full")
	}
}

// WritePump delivers queued payloads until the client closes.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// ReadPump blocks until the peer disconnects. Incoming messages are
// discarded; the connection is push-only.
func (c *Client) ReadPump() {
	defer c.Close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Websocket read error: %v", err)
			}
			return
		}
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
