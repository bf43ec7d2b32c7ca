//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/symbient-academy/internal/config"
	"github.com/ashureev/symbient-academy/internal/domain"
	"github.com/ashureev/symbient-academy/internal/training"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "Message is required")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "Message is required" {
		t.Errorf("Unexpected error body %v", got)
	}
}

func TestStagesAndWelcome(t *testing.T) {
	r := chi.NewRouter()
	NewCatalogHandler(training.MustLoadCatalog()).RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stages", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var stages []training.StageInfo
	if err := json.NewDecoder(w.Body).Decode(&stages); err != nil {
		t.Fatalf("Failed to decode stages: %v", err)
	}
	if len(stages) != len(domain.Stages()) {
		t.Fatalf("Expected %d stages, got %d", len(domain.Stages()), len(stages))
	}
	if stages[0].Stage != domain.StagePreparation || stages[0].Title != "Getting Started" {
		t.Errorf("Unexpected first stage %+v", stages[0])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/welcome", nil))
	var welcome map[string]string
	if err := json.NewDecoder(w.Body).Decode(&welcome); err != nil {
		t.Fatalf("Failed to decode welcome: %v", err)
	}
	if welcome["facilitator"] == "" || welcome["partner"] == "" {
		t.Errorf("Expected both welcome messages, got %v", welcome)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   string
	}{
		{"configured", "sk-test", "ok"},
		{"missing credential", "", "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Completion: config.CompletionConfig{APIKey: tt.apiKey, Model: config.DefaultModel}}
			r := chi.NewRouter()
			NewHealthHandlerWithConfig(cfg).RegisterHealth(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			var got map[string]any
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("Failed to decode health: %v", err)
			}
			if got["status"] != tt.want {
				t.Errorf("Expected status %q, got %v", tt.want, got["status"])
			}
			if got["model"] != config.DefaultModel {
				t.Errorf("Unexpected model %v", got["model"])
			}
		})
	}
}
