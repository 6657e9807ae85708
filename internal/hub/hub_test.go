package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu       sync.Mutex
	failWith error
	messages [][]byte
	closed   bool
}

func (c *fakeConn) WriteMessage(data []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func TestHub_BroadcastDeliversToAll(t *testing.T) {
	t.Parallel()

	h := New(nil)
	a := &fakeConn{}
	b := &fakeConn{}
	h.Subscribe(a)
	h.Subscribe(b)

	h.Broadcast(OrderStatus("order-1", "completed"))

	for _, c := range []*fakeConn{a, b} {
		if c.received() != 1 {
			t.Fatalf("expected 1 message, got %d", c.received())
		}
	}

	var ev Event
	if err := json.Unmarshal(a.messages[0], &ev); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if ev.Type != "ORDER_STATUS" || ev.OrderID != "order-1" || ev.Status != "completed" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestHub_BroadcastPrunesDeadConnections(t *testing.T) {
	t.Parallel()

	h := New(nil)
	alive1 := &fakeConn{}
	dead := &fakeConn{failWith: errors.New("broken pipe")}
	alive2 := &fakeConn{}
	h.Subscribe(alive1)
	h.Subscribe(dead)
	h.Subscribe(alive2)

	h.Broadcast(OrderStatus("order-2", "completed"))

	if alive1.received() != 1 || alive2.received() != 1 {
		t.Fatalf("expected delivery to live connections, got %d and %d", alive1.received(), alive2.received())
	}
	if h.Len() != 2 {
		t.Fatalf("expected 2 remaining subscribers, got %d", h.Len())
	}
	if !dead.closed {
		t.Fatalf("expected dead connection to be closed")
	}

	// The pruned connection must not receive later broadcasts.
	h.Broadcast(OrderStatus("order-3", "completed"))
	if alive1.received() != 2 {
		t.Fatalf("expected 2 messages on live connection, got %d", alive1.received())
	}
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	h := New(nil)
	c := &fakeConn{}
	h.Subscribe(c)
	h.Unsubscribe(c)
	h.Unsubscribe(c)

	if h.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", h.Len())
	}
}

func TestHub_ConcurrentSubscribeAndBroadcast(t *testing.T) {
	t.Parallel()

	h := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &fakeConn{}
			h.Subscribe(c)
			h.Broadcast(OrderStatus(fmt.Sprintf("order-%d", i), "completed"))
			h.Unsubscribe(c)
			_ = c.Close()
		}(i)
	}
	wg.Wait()

	if h.Len() != 0 {
		t.Fatalf("expected empty registry after all unsubscribed, got %d", h.Len())
	}
}
