package hub

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Conn is the write side of one live subscriber connection. Broadcast passes
// may overlap, so implementations must tolerate concurrent WriteMessage calls.
type Conn interface {
	WriteMessage(data []byte, deadline time.Time) error
	Close() error
}

// Event is the payload pushed to subscribers on an order status change.
type Event struct {
	Type    string `json:"type"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// OrderStatus builds the status-change event for an order.
func OrderStatus(orderID, status string) Event {
	return Event{Type: "ORDER_STATUS", OrderID: orderID, Status: status}
}

const defaultSendTimeout = 5 * time.Second

// Hub owns the process-wide set of live subscriber connections. State is
// in-memory only and rebuilt from nothing on restart; subscribers reconnect.
type Hub struct {
	mu          sync.Mutex
	conns       map[Conn]struct{}
	sendTimeout time.Duration
	logger      *zap.Logger
}

func New(logger *zap.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		conns:       make(map[Conn]struct{}),
		sendTimeout: defaultSendTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type Option func(*Hub)

// WithSendTimeout bounds how long one slow subscriber can delay a broadcast
// pass.
func WithSendTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.sendTimeout = d
		}
	}
}

// Subscribe registers a live connection. Non-blocking.
func (h *Hub) Subscribe(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

// Unsubscribe removes a connection; removing an absent one is a no-op. The
// caller owns closing the connection.
func (h *Hub) Unsubscribe(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

// Len reports the number of registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast serializes the event once and attempts delivery to every
// registered connection. Delivery runs against a snapshot of the registry so
// concurrent subscribes and unsubscribes never race the pass, and no lock is
// held while writing. Connections whose send fails are pruned and closed
// after the pass without aborting delivery to the rest.
func (h *Hub) Broadcast(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", zap.Error(err))
		return
	}

	h.mu.Lock()
	snapshot := make([]Conn, 0, len(h.conns))
	for c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	deadline := time.Now().Add(h.sendTimeout)
	var dead []Conn
	for _, c := range snapshot {
		if err := c.WriteMessage(payload, deadline); err != nil {
			h.logger.Warn("dropping subscriber after failed send",
				zap.String("event_type", ev.Type),
				zap.Error(err))
			dead = append(dead, c)
		}
	}

	for _, c := range dead {
		h.Unsubscribe(c)
		_ = c.Close()
	}
}
