// Package api provides HTTP handlers for the training API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/symbient-academy/internal/domain"
	"github.com/ashureev/symbient-academy/internal/training"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// CatalogHandler serves the static training material.
type CatalogHandler struct {
	catalog *training.Catalog
}

// NewCatalogHandler creates a handler for the stage catalog and welcome messages.
func NewCatalogHandler(catalog *training.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterRoutes registers catalog routes.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/stages", h.HandleStages)
	r.Get("/api/welcome", h.HandleWelcome)
}

// HandleStages lists every stage in training order.
func (h *CatalogHandler) HandleStages(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.catalog.StageList())
}

// HandleWelcome returns the opening message of each agent.
func (h *CatalogHandler) HandleWelcome(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[domain.Agent]string{
		domain.AgentFacilitator: h.catalog.Welcome(domain.AgentFacilitator),
		domain.AgentPartner:     h.catalog.Welcome(domain.AgentPartner),
	})
}
