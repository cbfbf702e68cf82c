package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// LiveEvent is pushed to every connected websocket client when a scan
// run lands.
type LiveEvent struct {
	Type      string `json:"type"`
	ScanRunID string `json:"scan_run_id,omitempty"`
	AsOf      string `json:"as_of,omitempty"`
	Signals   int    `json:"signals,omitempty"`
}

// Hub tracks live websocket subscribers and fans events out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	logger  *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool), logger: log}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.WithField("clients", n).Debug("Live client connected")
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	conn.Close()
	h.logger.WithField("clients", n).Debug("Live client disconnected")
}

// Broadcast sends the event to every subscriber. Clients that fail the
// write are dropped.
func (h *Hub) Broadcast(event LiveEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.WithError(err).Debug("Dropping live client after failed write")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// LiveHandler upgrades GET /api/live to a websocket subscription.
type LiveHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewLiveHandler creates a live handler backed by the given hub.
func NewLiveHandler(hub *Hub, log *logger.Logger) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Serve handles GET /api/live.
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.hub.register(conn)
	defer h.hub.unregister(conn)

	// Subscribers are read-only; the read loop exists to detect
	// disconnects and service control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
