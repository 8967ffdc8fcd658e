// Package observe serves a read-only WebSocket feed of game snapshots.
// Watchers receive the latest snapshot on connect and every snapshot after
// that; nothing they send reaches the game.
package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/lotto/internal/game"
)

// Hub fans snapshots out to connected watchers.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    quartz.Clock

	mu          sync.RWMutex
	connections map[*connection]struct{}
	latest      *Message
	ended       bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(h *Hub) {
		h.logger = logger.WithPrefix("observe")
	}
}

// WithClock sets the clock driving keepalive pings and message stamps.
func WithClock(clock quartz.Clock) Option {
	return func(h *Hub) {
		h.clock = clock
	}
}

// NewHub creates a hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			// Spectators may watch from any page
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:      log.New(io.Discard),
		clock:       quartz.NewReal(),
		connections: make(map[*connection]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler serves /ws and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", h.handleHealth)
	return mux
}

// Run broadcasts every snapshot from states until the channel closes or
// ctx is done. Watchers are told when the stream ends and disconnected
// when ctx is done.
func (h *Hub) Run(ctx context.Context, states <-chan game.State) error {
	for {
		select {
		case st, ok := <-states:
			if !ok {
				h.end()
				return nil
			}
			if err := h.Broadcast(st); err != nil {
				h.logger.Error("Failed to broadcast state", "error", err)
			}
		case <-ctx.Done():
			h.shutdown()
			return nil
		}
	}
}

// Broadcast sends st to every watcher and keeps it for new ones.
func (h *Hub) Broadcast(st game.State) error {
	msg, err := NewMessage(MessageTypeState, st, h.clock.Now())
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.latest = msg
	conns := h.snapshot()
	h.mu.Unlock()

	for _, c := range conns {
		if !c.enqueue(msg) {
			h.remove(c)
		}
	}
	return nil
}

// Watchers returns the number of connected watchers.
func (h *Hub) Watchers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ListenAndServe serves the feed on addr until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	h.logger.Info("Spectator feed listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("spectator feed: %w", err)
	}
	return nil
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newConnection(conn, h.logger, h.clock)

	h.mu.Lock()
	if h.ended {
		h.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game ended"))
		_ = conn.Close()
		return
	}
	h.connections[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	total := len(h.connections)
	h.mu.Unlock()

	h.logger.Info("Watcher connected", "total", total)
	c.start()

	go func() {
		<-c.ctx.Done()
		h.remove(c)
	}()
}

func (h *Hub) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (h *Hub) snapshot() []*connection {
	conns := make([]*connection, 0, len(h.connections))
	for c := range h.connections {
		conns = append(conns, c)
	}
	return conns
}

func (h *Hub) remove(c *connection) {
	h.mu.Lock()
	_, ok := h.connections[c]
	delete(h.connections, c)
	total := len(h.connections)
	h.mu.Unlock()

	if ok {
		c.close()
		h.logger.Info("Watcher disconnected", "total", total)
	}
}

// end tells every watcher the game is over; their write pumps close the
// connections after the final message.
func (h *Hub) end() {
	msg, err := NewMessage(MessageTypeGameEnded, nil, h.clock.Now())
	if err != nil {
		return
	}

	h.mu.Lock()
	h.ended = true
	conns := h.snapshot()
	h.mu.Unlock()

	for _, c := range conns {
		c.enqueue(msg)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	h.ended = true
	conns := h.snapshot()
	h.mu.Unlock()

	for _, c := range conns {
		h.remove(c)
	}
}
