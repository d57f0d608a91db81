package fanout

import (
	"context"
	"log"
	"sync"
	"time"
)

// Hub tracks connected subscribers and delivers payloads to them
type Hub struct {
	clients   map[string]*Client
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	subs Subscriptions

	totalConnections int64
	totalMessages    int64
	metricsMu        sync.Mutex
}

// NewHub creates a hub. Disconnected clients lose their subscriptions in subs.
func NewHub(subs Subscriptions) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		subs:       subs,
	}
}

// Subscriptions returns the registry clients join through
func (h *Hub) Subscriptions() Subscriptions {
	return h.subs
}

// Run processes registrations until ctx ends
func (h *Hub) Run(ctx context.Context) {
	log.Printf("[fanout] hub started")
	defer close(h.done)

	go h.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client and its subscriptions
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Notify implements Notifier for locally connected clients. Unknown clients are gone;
// clients too slow to keep up are disconnected and reported gone.
func (h *Hub) Notify(_ context.Context, subscriberID string, payload []byte) (Delivery, error) {
	h.clientsMu.RLock()
	c, ok := h.clients[subscriberID]
	h.clientsMu.RUnlock()
	if !ok {
		return Gone, nil
	}

	if !c.TrySend(payload) {
		log.Printf("[fanout] client %s buffer full, disconnecting", c.ID)
		go h.Unregister(c)
		return Gone, nil
	}

	h.incrementTotalMessages()
	return Delivered, nil
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c.ID] = c
	h.incrementTotalConnections()

	log.Printf("[fanout] client %s connected (total: %d)", c.ID, len(h.clients))
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	current, ok := h.clients[c.ID]
	if ok && current == c {
		delete(h.clients, c.ID)
		c.close()
	}
	total := len(h.clients)
	h.clientsMu.Unlock()

	if !ok || current != c {
		return
	}
	log.Printf("[fanout] client %s disconnected (total: %d)", c.ID, total)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.subs.Remove(ctx, c.ID); err != nil {
		log.Printf("[fanout] removing subscriptions for %s: %v", c.ID, err)
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.clientsMu.RLock()
	activeClients := len(h.clients)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":    activeClients,
		"total_connections": h.totalConnections,
		"total_messages":    h.totalMessages,
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	log.Printf("[fanout] shutting down hub (%d active clients)", len(h.clients))
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

func (h *Hub) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := h.GetMetrics()
			log.Printf("[fanout] hub metrics: clients=%d total_connections=%d messages=%d",
				m["active_clients"], m["total_connections"], m["total_messages"])
		}
	}
}

func (h *Hub) incrementTotalConnections() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalConnections++
}

func (h *Hub) incrementTotalMessages() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalMessages++
}
