// Package hub streams model events to presentation clients over
// Server-Sent Events.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"walflow/internal/metrics"
	"walflow/internal/service"
)

const (
	defaultKeepAlive = 30 * time.Second
	clientBuffer     = 64
	broadcastBuffer  = 256
)

// Client represents a connected SSE client
type Client struct {
	id     string
	events chan []byte
}

// Hub manages SSE client connections
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan service.Event
	done       chan struct{}

	bus       *service.EventBus
	metrics   *metrics.Registry
	logger    *slog.Logger
	keepAlive time.Duration
}

// Option configures a Hub.
type Option func(*Hub)

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(h *Hub) { h.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithKeepAlive sets the interval between keep-alive comments.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Hub) { h.keepAlive = d }
}

// New creates a new Hub. When bus is not nil, Run forwards every event
// published on it.
func New(bus *service.EventBus, opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan service.Event, broadcastBuffer),
		done:       make(chan struct{}),
		bus:        bus,
		keepAlive:  defaultKeepAlive,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = metrics.DefaultRegistry()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With("component", "hub")
	return h
}

// Run starts the hub's event loop. It returns nil when ctx is cancelled,
// after disconnecting every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	var events chan service.Event
	if h.bus != nil {
		events = make(chan service.Event, broadcastBuffer)
		h.bus.Subscribe(events)
		defer h.bus.Unsubscribe(events)
	}

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.events)
			}
			h.mu.Unlock()
			h.metrics.EventStreamClients.Set(0)
			return nil

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.EventStreamClients.Set(float64(n))
			h.logger.Info("SSE client connected", "client_id", client.id, "total", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.EventStreamClients.Set(float64(n))
			h.logger.Info("SSE client disconnected", "client_id", client.id, "total", n)

		case event := <-events:
			h.send(event)

		case event := <-h.broadcast:
			h.send(event)
		}
	}
}

func (h *Hub) send(event service.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to marshal event", "type", event.Type, "error", err)
		return
	}

	msg := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, data))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.events <- msg:
		default:
			// Client is slow, skip this message
			h.logger.Debug("SSE client is slow, skipping message", "client_id", client.id, "type", event.Type)
		}
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event service.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event", "type", event.Type)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles SSE connections
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Check if client supports SSE
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	client := &Client{
		id:     uuid.New().String(),
		events: make(chan []byte, clientBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}

	// Ensure cleanup on disconnect
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Send initial connection message
	fmt.Fprintf(w, ": connected %s\n\n", client.id)
	flusher.Flush()

	// Keep-alive ticker
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
