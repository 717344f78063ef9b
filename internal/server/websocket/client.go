// Package websocket streams broker events over WebSocket connections.
package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentstation/smsrelay/internal/server/events"
)

// TransportName labels WebSocket subscribers in logs and metrics.
const TransportName = "websocket"

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// ErrClosed is returned by writes after the client has been closed.
var ErrClosed = errors.New("websocket: client closed")

// Client is one WebSocket subscriber. Frames are the JSON encoding of
// events.Event: {"event":..,"id":..,"data":..}.
type Client struct {
	conn      *websocket.Conn
	mu        sync.Mutex
	writeWait time.Duration
	closed    bool
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, writeWait: writeWait}
}

// Send writes ev as a text frame.
func (c *Client) Send(ev events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(ev)
}

// Ping writes a ping control frame.
func (c *Client) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

// Close sends a close frame and closes the connection. Later calls do
// nothing.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
		time.Now().Add(c.writeWait),
	)
	return c.conn.Close()
}

// Transport implements events.Subscriber.
func (c *Client) Transport() string {
	return TransportName
}

// ReadPump drains inbound frames until the peer goes away. The stream is
// push-only, so frame contents are discarded; reading keeps pong handling
// alive and surfaces disconnects.
func (c *Client) ReadPump() error {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return err
		}
	}
}
