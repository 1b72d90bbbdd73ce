package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendQueueSize  = 64
)

// Conn is the subset of *websocket.Conn the hub and pumps need. Kept
// narrow so tests can stand in a fake transport.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Client ties one transport session to exactly one verified user id for
// its lifetime. The gateway that created it is its sole owner; teardown
// of either pump cancels the other and unregisters the client.
type Client struct {
	hub    *Hub
	conn   Conn
	userID uuid.UUID
	send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newClient(hub *Hub, conn Conn, userID uuid.UUID) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// UserID returns the verified identity bound at handshake.
func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// Close unregisters the client and tears down the transport. Unregistering
// closes the send queue, which stops the write pump; closing the transport
// stops the read pump. Idempotent.
func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()
		c.hub.Unregister(c)
		_ = c.conn.Close()
	})
}

// readPump reads envelopes sequentially and hands them to the gateway.
// No two envelopes from the same connection are ever processed
// concurrently.
func (c *Client) readPump(g *Gateway) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case <-c.ctx.Done():
			return
		default:
		}
		g.dispatch(c.ctx, c, data)
	}
}

// writePump forwards queued frames to the transport until a write fails
// or the queue is closed by unregistration.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

// sendError pushes an Error frame back to this connection only.
func (c *Client) sendError(msg string) {
	payload, err := MarshalEnvelope(EventError, ErrorPayload{Error: msg})
	if err != nil {
		return
	}
	c.hub.deliver(c, payload)
}
