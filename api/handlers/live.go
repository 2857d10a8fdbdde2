package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// LiveHub fans complaint updates out to connected dashboard clients over
// websockets, so status changes show up without polling
type LiveHub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// NewLiveHub returns an empty hub
func NewLiveHub() *LiveHub {
	return &LiveHub{
		conns: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and keeps the connection registered until
// the client goes away
func (h *LiveHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
	zap.S().Debugw("live feed client connected", "remote", conn.RemoteAddr())

	// drain reads to observe close frames
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends v as JSON to every connected client. A nil hub is a
// no-op so handlers can broadcast unconditionally.
func (h *LiveHub) Broadcast(v interface{}) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		zap.S().Errorw("failed to marshal live update", "error", err)
		return
	}

	// gorilla/websocket allows a single concurrent writer per connection,
	// so writes stay under the hub lock
	h.mu.Lock()
	var failed []*websocket.Conn
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		delete(h.conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range failed {
		conn.Close()
	}
}

func (h *LiveHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}
