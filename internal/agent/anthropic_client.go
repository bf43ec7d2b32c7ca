package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/ashureev/symbient-academy/internal/domain"
)

// AnthropicConfig holds configuration for the Anthropic completion client.
type AnthropicConfig struct {
	Model     string
	MaxTokens int
	BaseURL   string
}

// AnthropicClient implements Completer using the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *slog.Logger
}

// NewAnthropicClient creates a new Anthropic completion client.
func NewAnthropicClient(apiKey string, cfg AnthropicConfig, logger *slog.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, ErrCredentialMissing
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic model cannot be empty")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(apiKey, opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}, nil
}

// AnthropicFactory returns a CompleterFactory producing Anthropic clients.
func AnthropicFactory(cfg AnthropicConfig, logger *slog.Logger) CompleterFactory {
	return func(apiKey string) (Completer, error) {
		return NewAnthropicClient(apiKey, cfg, logger)
	}
}

// Complete implements Completer. A successful response with no text yields "".
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	msgs := make([]anthropic.Message, 0, len(req.Messages))
	for _, turn := range req.Messages {
		// The Messages API rejects empty text blocks; blank replies stay in the
		// client's history but are not sent upstream.
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		switch turn.Role {
		case domain.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantTextMessage(turn.Content))
		default:
			msgs = append(msgs, anthropic.NewUserTextMessage(turn.Content))
		}
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  msgs,
		System:    req.System,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text.WriteString(*block.Text)
		}
	}
	c.logger.Debug("Completion received",
		"agent", req.Agent,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return text.String(), nil
}
