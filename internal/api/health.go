package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/symbient-academy/internal/config"
)

// HealthHandler reports server readiness.
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandlerWithConfig creates a health handler.
func NewHealthHandlerWithConfig(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// RegisterHealth registers the health route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.HandleHealth)
}

// HandleHealth reports whether chat requests can reach the completion service.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if !h.cfg.HasCredential() {
		status = "degraded"
	}
	JSON(w, http.StatusOK, map[string]any{
		"status":                status,
		"model":                 h.cfg.Completion.Model,
		"credential_configured": h.cfg.HasCredential(),
	})
}
