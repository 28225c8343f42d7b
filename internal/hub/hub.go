package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jackmcnulty/sports-ticker/internal/aggregator"
	"github.com/jackmcnulty/sports-ticker/internal/client"
	"github.com/jackmcnulty/sports-ticker/internal/metrics"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

// ErrBufferFull is returned by Publish when the hub is not keeping up
var ErrBufferFull = errors.New("broadcast buffer full")

const broadcastBufferSize = 16

// Hub maintains the set of active clients and pushes snapshots to them.
// New and resubscribing clients get the latest snapshot immediately.
type Hub struct {
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	broadcast  chan aggregator.Snapshot
	register   chan *client.Client
	unregister chan *client.Client
	refresh    chan *client.Client
	done       chan struct{}

	latest   *aggregator.Snapshot
	latestMu sync.RWMutex

	totalConnections int64
	totalMessages    int64
	countersMu       sync.Mutex

	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan aggregator.Snapshot, broadcastBufferSize),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		refresh:    make(chan *client.Client, broadcastBufferSize),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)
			h.sendLatest(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case c := <-h.refresh:
			h.sendLatest(c)

		case snap := <-h.broadcast:
			h.setLatest(snap)
			h.broadcastSnapshot(snap)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Refresh re-sends the latest snapshot, typically after a filter change
func (h *Hub) Refresh(c *client.Client) {
	select {
	case h.refresh <- c:
	default:
	}
}

// Name identifies this sink in logs and metrics
func (h *Hub) Name() string {
	return "websocket"
}

// Publish queues a snapshot for broadcast without blocking
func (h *Hub) Publish(_ context.Context, snap aggregator.Snapshot) error {
	select {
	case h.broadcast <- snap:
		return nil
	default:
		return ErrBufferFull
	}
}

// Latest returns the last broadcast snapshot, if any
func (h *Hub) Latest() (aggregator.Snapshot, bool) {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	if h.latest == nil {
		return aggregator.Snapshot{}, false
	}
	return *h.latest, true
}

// ClientCount returns the number of active clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Stats returns hub counters for the health endpoint
func (h *Hub) Stats() map[string]interface{} {
	h.countersMu.Lock()
	totalConnections := h.totalConnections
	totalMessages := h.totalMessages
	h.countersMu.Unlock()

	return map[string]interface{}{
		"active_clients":     h.ClientCount(),
		"total_connections":  totalConnections,
		"total_messages":     totalMessages,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// FilterSnapshot narrows a snapshot to the sports a client follows. The
// alert is recomputed from the first matching failure.
func FilterSnapshot(snap aggregator.Snapshot, filter models.SubscriptionFilter) aggregator.Snapshot {
	if len(filter.Sports) == 0 || snap.Mode == aggregator.ModeFantasy {
		return snap
	}

	out := snap
	out.Events = []models.Event{}
	for _, e := range snap.Events {
		if filter.Matches(e.Sport) {
			out.Events = append(out.Events, e)
		}
	}

	out.Alert = ""
	out.Failures = nil
	for _, f := range snap.Failures {
		if !filter.Matches(f.Sport) {
			continue
		}
		out.Failures = append(out.Failures, f)
		if out.Alert == "" {
			out.Alert = f.Message()
		}
	}
	return out
}

func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.countersMu.Lock()
	h.totalConnections++
	h.countersMu.Unlock()

	h.metrics.SetWebsocketClients(count)
	h.logger.Info("client connected", zap.String("client_id", c.ID), zap.Int("total", count))
}

func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.Close()
	}
	count := len(h.clients)
	h.clientsMu.Unlock()

	if ok {
		h.metrics.SetWebsocketClients(count)
		h.logger.Info("client disconnected", zap.String("client_id", c.ID), zap.Int("total", count))
	}
}

func (h *Hub) setLatest(snap aggregator.Snapshot) {
	h.latestMu.Lock()
	defer h.latestMu.Unlock()
	h.latest = &snap
}

func (h *Hub) sendLatest(c *client.Client) {
	snap, ok := h.Latest()
	if !ok {
		return
	}

	h.clientsMu.RLock()
	_, active := h.clients[c]
	h.clientsMu.RUnlock()
	if !active {
		return
	}

	c.TrySend(snapshotMessage(FilterSnapshot(snap, c.Filter())))
}

func (h *Hub) broadcastSnapshot(snap aggregator.Snapshot) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	var slow []*client.Client
	sent := 0
	for _, c := range clients {
		if c.TrySend(snapshotMessage(FilterSnapshot(snap, c.Filter()))) {
			sent++
			continue
		}
		slow = append(slow, c)
	}

	// slow clients are dropped; they reconnect and get the latest snapshot
	for _, c := range slow {
		h.logger.Warn("client buffer full, disconnecting", zap.String("client_id", c.ID))
		h.unregisterClient(c)
	}

	if sent > 0 {
		h.countersMu.Lock()
		h.totalMessages++
		h.countersMu.Unlock()
	}

	h.logger.Debug("snapshot broadcast",
		zap.String("snapshot_id", snap.ID),
		zap.Int("sent", sent),
		zap.Int("dropped", len(slow)),
	)
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.logger.Info("shutting down hub", zap.Int("active_clients", len(h.clients)))

	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
	h.metrics.SetWebsocketClients(0)
}

func snapshotMessage(snap aggregator.Snapshot) models.ServerMessage {
	return models.ServerMessage{
		Type:      models.MessageTypeSnapshot,
		Payload:   snap,
		Timestamp: time.Now(),
	}
}
