package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/symbient-academy/internal/agent"
	"github.com/ashureev/symbient-academy/internal/api"
	"github.com/ashureev/symbient-academy/internal/config"
	"github.com/ashureev/symbient-academy/internal/metrics"
	"github.com/ashureev/symbient-academy/internal/middleware"
)

// newRouter wires middleware and routes. The chat endpoint advertises only
// POST and OPTIONS; the read-only routes advertise GET.
func newRouter(cfg *config.Config, agentHandler *agent.Handler, catalogHandler *api.CatalogHandler, healthHandler *api.HealthHandler, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
		agentHandler.RegisterRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(cfg.AllowedOrigins, http.MethodGet, http.MethodOptions))
		healthHandler.RegisterHealth(r)
		catalogHandler.RegisterRoutes(r)
	})

	r.Handle("/metrics", m.Handler())
	return r
}
