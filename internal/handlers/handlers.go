package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/jackmcnulty/sports-ticker/internal/aggregator"
	"github.com/jackmcnulty/sports-ticker/internal/client"
	"github.com/jackmcnulty/sports-ticker/internal/hub"
	"github.com/jackmcnulty/sports-ticker/internal/metrics"
	"github.com/jackmcnulty/sports-ticker/pkg/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// dataTimeout bounds one /data aggregation; it sits above the per-fetch
// timeout so a single slow league fails alone
const dataTimeout = 20 * time.Second

// Aggregator produces snapshots on demand
type Aggregator interface {
	Aggregate(ctx context.Context, mode aggregator.Mode) aggregator.Snapshot
}

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	agg     Aggregator
	hub     *hub.Hub
	metrics *metrics.Metrics
	checks  map[string]HealthCheck
	startup time.Time
	leagues int

	// pumps outlive the upgrade request, so they run on the server context
	ctx      context.Context
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// Options carries the optional collaborators of a Handler
type Options struct {
	Hub     *hub.Hub
	Metrics *metrics.Metrics
	Checks  map[string]HealthCheck
	Leagues int
	Startup time.Time
	Logger  *zap.Logger
}

// NewHandler creates a new handler with dependencies
func NewHandler(ctx context.Context, agg Aggregator, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Startup.IsZero() {
		opts.Startup = time.Now()
	}
	return &Handler{
		agg:     agg,
		hub:     opts.Hub,
		metrics: opts.Metrics,
		checks:  opts.Checks,
		startup: opts.Startup.UTC(),
		leagues: opts.Leagues,
		ctx:     ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origin policy is enforced by the CORS layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: opts.Logger,
	}
}

// GetData aggregates on demand.
// Query params: mode (sports|fantasy, default sports)
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	mode, err := aggregator.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "mode must be sports or fantasy", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dataTimeout)
	defer cancel()

	snap := h.agg.Aggregate(ctx, mode)

	resp := models.DataResponse{Events: snap.Events}
	if mode == aggregator.ModeFantasy {
		resp.Events = snap.Matchups
	}
	if snap.Alert != "" {
		alert := snap.Alert
		resp.Alert = &alert
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// GetVersion reports the process start time; clients reload when it changes
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, models.VersionResponse{
		Startup: h.startup.Format(time.RFC3339),
	})
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.respondError(w, http.StatusServiceUnavailable, name+" unhealthy", err)
			return
		}
	}

	body := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "sports-ticker",
		"leagues":   h.leagues,
	}
	if h.hub != nil {
		body["hub"] = h.hub.Stats()
	}
	h.respondJSON(w, http.StatusOK, body)
}

// Metrics exposes prometheus collectors
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.Handler().ServeHTTP(w, r)
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		h.respondError(w, http.StatusServiceUnavailable, "live updates disabled", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := client.NewClient(uuid.New().String(), conn, h.hub, h.logger)
	h.hub.Register(c)

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("error encoding response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.Warn(message, zap.Error(err))
	}

	h.respondJSON(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
