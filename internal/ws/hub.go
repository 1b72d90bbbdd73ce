package ws

import (
	"sync"

	"github.com/google/uuid"

	"amora-service/internal/observability"
)

// Hub is the connection registry: it routes frames to live connections
// keyed by user id. Multiple simultaneous connections per user are
// permitted and all receive frames addressed to that user. One Hub is
// created at process start and torn down with the process.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[*Client]struct{})}
}

// Register adds a client under its user id.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.userID]; !ok {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

// Unregister removes a client and closes its outbound queue. Idempotent;
// safe to call more than once. The queue is closed under the lock so no
// send can race the close.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, registered := set[c]; !registered {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

// Broadcast enqueues a frame for every registered connection. A slow or
// broken connection never blocks delivery to the others; clients whose
// queue is full are disconnected.
func (h *Hub) Broadcast(payload []byte) {
	var overflow []*Client
	h.mu.RLock()
	for _, set := range h.clients {
		for c := range set {
			select {
			case c.send <- payload:
			default:
				overflow = append(overflow, c)
			}
		}
	}
	h.mu.RUnlock()
	for _, c := range overflow {
		observability.IncWSEvent("ws_slow_consumer")
		c.Close()
	}
}

// SendToUser enqueues a frame only for connections registered under the
// given user id. Preferred over Broadcast for any payload with a defined
// recipient, signaling relays in particular.
func (h *Hub) SendToUser(userID uuid.UUID, payload []byte) {
	var overflow []*Client
	h.mu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			overflow = append(overflow, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range overflow {
		observability.IncWSEvent("ws_slow_consumer")
		c.Close()
	}
}

// deliver enqueues a frame for a single client if it is still registered.
func (h *Hub) deliver(c *Client, payload []byte) {
	full := false
	h.mu.RLock()
	if set, ok := h.clients[c.userID]; ok {
		if _, registered := set[c]; registered {
			select {
			case c.send <- payload:
			default:
				full = true
			}
		}
	}
	h.mu.RUnlock()
	if full {
		observability.IncWSEvent("ws_slow_consumer")
		c.Close()
	}
}

// ConnectionCount reports the number of live connections for a user.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
