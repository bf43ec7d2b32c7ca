package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashureev/symbient-academy/internal/domain"
	"github.com/ashureev/symbient-academy/internal/metrics"
	"github.com/ashureev/symbient-academy/internal/training"
)

// ServiceConfig holds the dependencies of the dual-agent service.
type ServiceConfig struct {
	// APIKey is the completion service credential. Empty means unconfigured.
	APIKey string
	// NewCompleter builds the completion client for APIKey.
	NewCompleter CompleterFactory
	Catalog      *training.Catalog
	// Timeout bounds one exchange, both completion calls included. Zero disables it.
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Service runs one training exchange against both agents.
type Service struct {
	apiKey    string
	completer Completer
	catalog   *training.Catalog
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
	newID     func() string
}

// NewService creates a new dual-agent service. A missing credential is not an
// error here; every exchange reports it instead.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Catalog == nil {
		c, err := training.LoadCatalog()
		if err != nil {
			return nil, err
		}
		cfg.Catalog = c
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Service{
		apiKey:  cfg.APIKey,
		catalog: cfg.Catalog,
		timeout: cfg.Timeout,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		newID:   NewSessionID,
	}

	if cfg.APIKey != "" && cfg.NewCompleter != nil {
		completer, err := cfg.NewCompleter(cfg.APIKey)
		if err != nil {
			return nil, err
		}
		s.completer = completer
	}
	return s, nil
}

// Catalog returns the training catalog used for prompts.
func (s *Service) Catalog() *training.Catalog {
	return s.catalog
}

// Configured reports whether exchanges can reach the completion service.
func (s *Service) Configured() bool {
	return s.apiKey != "" && s.completer != nil
}

// Exchange sends the user's message to both agents concurrently and waits for both.
// Either failure fails the whole exchange and no reply is returned.
func (s *Service) Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		s.metrics.RecordExchange(metrics.OutcomeClientError)
		return nil, ErrMessageRequired
	}
	if !s.Configured() {
		s.metrics.RecordExchange(metrics.OutcomeConfigError)
		return nil, ErrCredentialMissing
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	messages := make([]domain.Turn, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, domain.UserTurn(req.Message))

	agents := domain.Agents()
	replies := make([]string, len(agents))
	failures := make([]error, len(agents))

	// A plain Group: no derived context, so a failing branch never cancels its sibling.
	var g errgroup.Group
	for i, a := range agents {
		i, a := i, a
		g.Go(func() error {
			text, err := s.complete(ctx, a, req.Stage, messages)
			replies[i] = text
			failures[i] = err
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.RecordExchange(metrics.OutcomeUpstreamError)
		for i, a := range agents {
			if failures[i] != nil {
				s.logger.Error("Agent completion failed",
					"agent", a,
					"session_id", req.SessionID,
					"stage", req.Stage,
					"error", failures[i],
				)
			}
		}
		return nil, firstUpstreamError(agents, failures)
	}

	next := domain.NextStage(req.Stage)
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.newID()
	}

	s.metrics.RecordExchange(metrics.OutcomeOK)
	if next != req.Stage {
		s.metrics.RecordTransition(string(req.Stage), string(next))
	}

	return &ExchangeResult{
		Facilitator: replies[0],
		Partner:     replies[1],
		NextStage:   next,
		SessionID:   sessionID,
	}, nil
}

func (s *Service) complete(ctx context.Context, a domain.Agent, stage domain.Stage, messages []domain.Turn) (string, error) {
	start := time.Now()
	text, err := s.completer.Complete(ctx, CompletionRequest{
		Agent:    a,
		System:   s.catalog.SystemPrompt(a, stage),
		Messages: messages,
	})
	s.metrics.RecordCompletion(string(a), err, time.Since(start))
	if err != nil {
		return "", &UpstreamError{Agent: a, Err: err}
	}
	return text, nil
}

func firstUpstreamError(agents []domain.Agent, failures []error) error {
	for _, err := range failures {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return upstream
		}
	}
	return &UpstreamError{Agent: agents[0], Err: errors.New("unknown completion failure")}
}
