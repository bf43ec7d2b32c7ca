// Package agent implements the dual-agent training chat.
package agent

import (
	"github.com/ashureev/symbient-academy/internal/domain"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message             string        `json:"message"`
	SessionID           string        `json:"sessionId,omitempty"`
	CurrentStage        domain.Stage  `json:"currentStage"`
	ConversationHistory []domain.Turn `json:"conversationHistory,omitempty"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Facilitator  string       `json:"facilitator"`
	Partner      string       `json:"partner"`
	CurrentStage domain.Stage `json:"currentStage"`
	SessionID    string       `json:"sessionId"`
}

// ErrorResponse is the failure body of POST /api/chat.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ExchangeRequest is one user message together with the client-held session state.
type ExchangeRequest struct {
	Message   string
	SessionID string
	Stage     domain.Stage
	History   []domain.Turn
}

// ExchangeResult holds both agents' replies and the advanced session state.
type ExchangeResult struct {
	Facilitator string
	Partner     string
	NextStage   domain.Stage
	SessionID   string
}

// CompletionRequest is a single call to the completion service.
type CompletionRequest struct {
	Agent    domain.Agent
	System   string
	Messages []domain.Turn
}
