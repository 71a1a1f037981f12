package notifications

import (
	"context"
	"errors"
	"sync"

	"sangrachna/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerOperator = 8
	maxTotalConns       = 256
)

var (
	ErrHubFull      = errors.New("server connection limit reached")
	ErrOperatorFull = errors.New("operator connection limit reached")
	ErrHubClosed    = errors.New("hub is shut down")
)

// Hub fans moderation events out to every connected operator.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[*Client]struct{}
	total  int
	closed bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*Client]struct{})}
}

// Register adds a connection for operator.
func (h *Hub) Register(operator string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		return nil, ErrHubFull
	}
	m, ok := h.conns[operator]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[operator] = m
	}
	if len(m) >= maxConnsPerOperator {
		return nil, ErrOperatorFull
	}

	client := newClient(h, conn, operator)
	m[client] = struct{}{}
	h.total++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send channel. It is safe to
// call more than once.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.Operator]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.Operator)
	}
	h.total--
	close(client.Send)
	observability.WebSocketConnectionsTotal.Dec()
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// BroadcastAll sends message to every connected operator.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(message)
		}
	}
}

// StartWiring forwards every moderation event published through n to this hub.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(payload string) {
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown closes every client's send channel; each WritePump then sends a
// close frame and drops its connection.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for _, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			observability.WebSocketConnectionsTotal.Dec()
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.total = 0
	return nil
}
