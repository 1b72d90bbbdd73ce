package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	closed bool
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	return 0, nil, assert.AnError
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error { return nil }
func (f *fakeConn) SetReadLimit(limit int64)                        {}
func (f *fakeConn) SetReadDeadline(t time.Time) error               { return nil }
func (f *fakeConn) SetWriteDeadline(t time.Time) error              { return nil }
func (f *fakeConn) SetPongHandler(h func(string) error)             {}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func registeredClient(hub *Hub, userID uuid.UUID) *Client {
	c := newClient(hub, &fakeConn{}, userID)
	hub.Register(c)
	return c
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	c := registeredClient(hub, userID)
	require.Equal(t, 1, hub.ConnectionCount(userID))

	hub.Unregister(c)
	require.Equal(t, 0, hub.ConnectionCount(userID))

	// Unregistering again must not close the queue twice.
	hub.Unregister(c)
}

func TestHubMultipleConnectionsPerUser(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	a := registeredClient(hub, userID)
	b := registeredClient(hub, userID)
	require.Equal(t, 2, hub.ConnectionCount(userID))

	hub.SendToUser(userID, []byte("hi"))
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)

	hub.Unregister(a)
	require.Equal(t, 1, hub.ConnectionCount(userID))
}

func TestHubBroadcastReachesAllUsers(t *testing.T) {
	hub := NewHub()
	a := registeredClient(hub, uuid.New())
	b := registeredClient(hub, uuid.New())

	hub.Broadcast([]byte("frame"))

	assert.Equal(t, []byte("frame"), <-a.send)
	assert.Equal(t, []byte("frame"), <-b.send)
}

func TestHubSendToUserTargetsOnlyThatUser(t *testing.T) {
	hub := NewHub()
	target := uuid.New()
	a := registeredClient(hub, target)
	other := registeredClient(hub, uuid.New())

	hub.SendToUser(target, []byte("direct"))

	assert.Len(t, a.send, 1)
	assert.Len(t, other.send, 0)
}

func TestHubDisconnectsSlowConsumer(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	slow := registeredClient(hub, userID)
	healthy := registeredClient(hub, uuid.New())

	for i := 0; i < sendQueueSize; i++ {
		slow.send <- []byte("backlog")
	}

	hub.Broadcast([]byte("overflow"))

	assert.Equal(t, 0, hub.ConnectionCount(userID))
	assert.True(t, slow.conn.(*fakeConn).isClosed())
	assert.Equal(t, 1, hub.ConnectionCount(healthy.userID))
}

func TestClientCloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := registeredClient(hub, uuid.New())

	c.Close()
	c.Close()

	assert.Equal(t, 0, hub.ConnectionCount(c.userID))
	assert.True(t, c.conn.(*fakeConn).isClosed())
}
