package agent

import (
	"errors"
	"fmt"

	"github.com/ashureev/symbient-academy/internal/domain"
)

var (
	// ErrMessageRequired is returned when the user message is empty.
	ErrMessageRequired = errors.New("message is required")
	// ErrCredentialMissing is returned when no completion API key is configured.
	ErrCredentialMissing = errors.New("api key not configured")
)

// UpstreamError reports a failed completion call for one agent.
type UpstreamError struct {
	Agent domain.Agent
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Agent, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
