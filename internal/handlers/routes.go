package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jackmcnulty/sports-ticker/internal/middleware"
)

// NewRouter wires the middleware stack and routes
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Get("/metrics", h.Metrics)
	r.Get("/version", h.GetVersion)
	r.Get("/ws", h.HandleWebSocket)

	// websocket connections are long-lived; only plain requests get a deadline
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))
		r.Get("/data", h.GetData)
	})

	return r
}
