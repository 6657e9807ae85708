package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/YBushi/bar-ordering-app/internal/hub"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsConn adapts a gorilla connection to the hub's write-side interface. The
// mutex serializes writers: gorilla allows one concurrent writer per
// connection while broadcast passes may overlap.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteMessage(data []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// HandleLiveUpdates serves GET /ws: it upgrades the connection, registers it
// with the hub and keeps reading until the client goes away. Clients send no
// application messages; inbound frames are drained so pings keep working.
func HandleLiveUpdates(h *hub.Hub, allowedOrigins []string, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		sub := &wsConn{conn: conn}
		h.Subscribe(sub)
		defer func() {
			h.Unsubscribe(sub)
			_ = conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients send no Origin header.
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
