package agent

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/symbient-academy/internal/api"
	"github.com/ashureev/symbient-academy/internal/domain"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20 // 1MB

// Handler handles training chat HTTP requests.
type Handler struct {
	agent       *Service
	log         ConversationLogger
	maxBodySize int64
}

// NewHandler creates a new chat handler.
func NewHandler(service *Service, conversationLogger ConversationLogger, maxBodySize int64) *Handler {
	if conversationLogger == nil {
		conversationLogger = noopConversationLogger{}
	}
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxRequestBodySize
	}
	return &Handler{
		agent:       service,
		log:         conversationLogger,
		maxBodySize: maxBodySize,
	}
}

// HandleChat handles /api/chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		// Behind middleware.CORS pre-flight never gets here; this covers a bare mount.
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		api.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, turn := range req.ConversationHistory {
		if err := turn.Validate(); err != nil {
			api.JSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "invalid conversation history",
				Details: err.Error(),
			})
			return
		}
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	slog.Info("Training chat request",
		"session_id", req.SessionID,
		"stage", req.CurrentStage,
		"history_turns", len(req.ConversationHistory),
		"message_length", len(req.Message),
		"request_id", reqID,
	)

	start := time.Now()
	result, err := h.agent.Exchange(r.Context(), ExchangeRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
		Stage:     req.CurrentStage,
		History:   req.ConversationHistory,
	})
	switch {
	case errors.Is(err, ErrMessageRequired):
		api.Error(w, http.StatusBadRequest, "Message is required")
		return
	case errors.Is(err, ErrCredentialMissing):
		slog.Error("Chat request rejected: completion credential missing", "request_id", reqID)
		api.Error(w, http.StatusInternalServerError, "API key not configured")
		return
	case err != nil:
		slog.Error("Chat API error", "error", err, "session_id", req.SessionID, "request_id", reqID)
		api.JSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process chat request",
			Details: err.Error(),
		})
		return
	}

	h.logExchange(req, result, reqID, time.Since(start))

	api.JSON(w, http.StatusOK, ChatResponse{
		Facilitator:  result.Facilitator,
		Partner:      result.Partner,
		CurrentStage: result.NextStage,
		SessionID:    result.SessionID,
	})
}

func (h *Handler) logExchange(req ChatRequest, result *ExchangeResult, requestID string, elapsed time.Duration) {
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	meta := map[string]any{
		"request_id": requestID,
		"elapsed_ms": elapsed.Milliseconds(),
	}
	h.log.Log(ConversationLogEvent{
		Timestamp:  ts,
		SessionID:  result.SessionID,
		Stage:      string(req.CurrentStage),
		Direction:  "outbound",
		EventType:  "chat_user_message",
		ContentRaw: req.Message,
		Meta:       meta,
	})
	h.log.Log(ConversationLogEvent{
		Timestamp:  ts,
		SessionID:  result.SessionID,
		Stage:      string(result.NextStage),
		Agent:      string(domain.AgentFacilitator),
		Direction:  "inbound",
		EventType:  "chat_agent_message",
		ContentRaw: result.Facilitator,
		Meta:       meta,
	})
	h.log.Log(ConversationLogEvent{
		Timestamp:  ts,
		SessionID:  result.SessionID,
		Stage:      string(result.NextStage),
		Agent:      string(domain.AgentPartner),
		Direction:  "inbound",
		EventType:  "chat_agent_message",
		ContentRaw: result.Partner,
		Meta:       meta,
	})
}

// RegisterRoutes registers the chat endpoint. Method checks happen in HandleChat
// so that unsupported methods get a JSON body.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/api/chat", h.HandleChat)
}

// Close releases handler resources.
func (h *Handler) Close() {
	if h.log != nil {
		if err := h.log.Close(); err != nil {
			slog.Warn("failed to close conversation logger", "error", err)
		}
	}
}
