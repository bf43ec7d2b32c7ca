package agent

import (
	"context"
)

// Completer sends one prompt to the text-completion service and returns the generated text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterFactory builds a Completer for a credential.
type CompleterFactory func(apiKey string) (Completer, error)

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}

// Ensure AnthropicClient implements Completer.
var _ Completer = (*AnthropicClient)(nil)
