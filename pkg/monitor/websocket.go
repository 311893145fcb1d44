package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.gwt/pkg/logging"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// Message kinds written to WebSocket clients.
const (
	KindDashboard = "dashboard"
	KindEvent     = "event"
)

// Message is the envelope for every frame sent to clients.
type Message struct {
	Kind      string             `json:"kind"`
	Event     *Event             `json:"event,omitempty"`
	Dashboard *DashboardSnapshot `json:"dashboard,omitempty"`
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger used for connection events.
func WithHubLogger(l logging.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

// WithHandler mounts an additional handler on the hub's mux,
// for example a metrics endpoint.
func WithHandler(pattern string, handler http.Handler) HubOption {
	return func(h *Hub) { h.extra[pattern] = handler }
}

// Hub broadcasts collector events to WebSocket clients on
// /events and serves the dashboard snapshot on /dashboard.
type Hub struct {
	collector *EventCollector
	dashboard *DashboardData
	upgrader  websocket.Upgrader
	logger    logging.Logger
	extra     map[string]http.Handler

	mu      sync.RWMutex
	clients map[*client]struct{}
	server  *http.Server
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub and subscribes it to the collector.
func NewHub(
	collector *EventCollector,
	dashboard *DashboardData,
	opts ...HubOption,
) *Hub {
	h := &Hub{
		collector: collector,
		dashboard: dashboard,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logging.NullLogger{},
		extra:   make(map[string]http.Handler),
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	collector.OnEvent(h.publish)
	return h
}

// Handler returns the hub's HTTP routes.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.handleEvents)
	mux.HandleFunc("/dashboard", h.handleDashboard)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	for pattern, handler := range h.extra {
		mux.Handle(pattern, handler)
	}
	return mux
}

// Serve accepts connections on ln until ctx is cancelled or
// Close is called.
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	h.server = srv
	h.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = h.Close() })
	defer stop()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

// Start listens on addr and serves until ctx is cancelled.
func (h *Hub) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor listen %s: %w", addr, err)
	}
	return h.Serve(ctx, ln)
}

// Close disconnects every client and stops the server.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	srv := h.server
	h.mu.Unlock()

	if srv != nil {
		return srv.Close()
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) publish(event Event) {
	h.dashboard.UpdateFromEvent(event)
	data, err := json.Marshal(Message{Kind: KindEvent, Event: &event})
	if err != nil {
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client; drop the frame.
		}
	}
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket_upgrade_failed",
			logging.ErrorField(err))
		return
	}

	snap := h.dashboard.Snapshot()
	initial, err := json.Marshal(Message{
		Kind:      KindDashboard,
		Dashboard: &snap,
	})
	if err != nil {
		_ = conn.Close()
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- initial

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("websocket_client_connected",
		logging.StringField("remote", r.RemoteAddr))

	go c.writeLoop()
	c.readLoop()
	h.remove(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readLoop drains client frames so control messages are
// processed; it returns when the connection fails or closes.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
}

func (h *Hub) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.dashboard.Snapshot())
}
