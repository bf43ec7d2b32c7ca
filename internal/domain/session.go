package domain

import (
	"time"
)

// Session holds the client-side state of a training session.
// The server never stores it; clients send it back with every exchange.
type Session struct {
	ID            string
	Stage         Stage
	ExchangeCount int
	History       []Turn
	StartedAt     time.Time
}

// NewSession returns a session positioned at the first stage.
func NewSession() *Session {
	return &Session{
		Stage:     StagePreparation,
		StartedAt: time.Now(),
	}
}

// Record applies a completed exchange. Turns are appended in the order
// user, facilitator, partner and earlier turns are never touched.
func (s *Session) Record(message, facilitator, partner string, next Stage, sessionID string) {
	s.History = append(s.History,
		UserTurn(message),
		AgentTurn(AgentFacilitator, facilitator),
		AgentTurn(AgentPartner, partner),
	)
	if sessionID != "" {
		s.ID = sessionID
	}
	s.Stage = next
	s.ExchangeCount++
}

// HistorySnapshot returns a copy of the history safe to hand to another goroutine.
func (s *Session) HistorySnapshot() []Turn {
	out := make([]Turn, len(s.History))
	copy(out, s.History)
	return out
}

// Complete reports whether the session reached the final stage.
func (s *Session) Complete() bool {
	return s.Stage.Terminal()
}

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}

// Reset discards all progress and starts over.
func (s *Session) Reset() {
	*s = *NewSession()
}
