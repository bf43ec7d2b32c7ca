package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ashureev/symbient-academy/internal/domain"
	"github.com/ashureev/symbient-academy/internal/metrics"
	"github.com/ashureev/symbient-academy/internal/training"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, apiKey string, c Completer) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(nil)
	svc, err := NewService(ServiceConfig{
		APIKey: apiKey,
		NewCompleter: func(string) (Completer, error) {
			return c, nil
		},
		Catalog: training.MustLoadCatalog(),
		Timeout: 5 * time.Second,
		Metrics: m,
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, m
}

// replyByAgent answers "F-reply" for the facilitator and "P-reply" for the partner.
func replyByAgent(_ context.Context, req CompletionRequest) (string, error) {
	if req.Agent == domain.AgentFacilitator {
		return "F-reply", nil
	}
	return "P-reply", nil
}

func TestExchangeReturnsBothRepliesAndAdvancesStage(t *testing.T) {
	t.Parallel()

	svc, m := newTestService(t, "sk-test", CompleterFunc(replyByAgent))

	got, err := svc.Exchange(context.Background(), ExchangeRequest{
		Message: "hello",
		Stage:   domain.StagePreparation,
	})
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if got.Facilitator != "F-reply" || got.Partner != "P-reply" {
		t.Fatalf("unexpected replies: %+v", got)
	}
	if got.NextStage != domain.StageSentience {
		t.Fatalf("expected next stage sentience, got %q", got.NextStage)
	}
	if !strings.HasPrefix(got.SessionID, "session_") {
		t.Fatalf("expected generated session id, got %q", got.SessionID)
	}
	if v := testutil.ToFloat64(m.ExchangesTotal.WithLabelValues(metrics.OutcomeOK)); v != 1 {
		t.Fatalf("expected 1 ok exchange, got %v", v)
	}
}

func TestExchangeSendsStagePromptsAndSharedHistory(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := map[domain.Agent]CompletionRequest{}
	svc, _ := newTestService(t, "sk-test", CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		mu.Lock()
		seen[req.Agent] = req
		mu.Unlock()
		return replyByAgent(ctx, req)
	}))

	history := []domain.Turn{
		domain.UserTurn("hi"),
		domain.AgentTurn(domain.AgentFacilitator, "welcome"),
		domain.AgentTurn(domain.AgentPartner, "glad to be here"),
	}
	if _, err := svc.Exchange(context.Background(), ExchangeRequest{
		Message:   "next",
		SessionID: "session_1_abc",
		Stage:     domain.StageTrust,
		History:   history,
	}); err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}

	catalog := svc.Catalog()
	for _, a := range domain.Agents() {
		req, ok := seen[a]
		if !ok {
			t.Fatalf("agent %s was not called", a)
		}
		if want := catalog.SystemPrompt(a, domain.StageTrust); req.System != want {
			t.Errorf("%s system prompt mismatch", a)
		}
		if len(req.Messages) != len(history)+1 {
			t.Fatalf("%s got %d messages, want %d", a, len(req.Messages), len(history)+1)
		}
		last := req.Messages[len(req.Messages)-1]
		if last.Role != domain.RoleUser || last.Content != "next" {
			t.Errorf("%s last message = %+v", a, last)
		}
		if req.Messages[1].Role != domain.RoleAssistant {
			t.Errorf("%s expected assistant role for agent history turn", a)
		}
	}
}

func TestExchangeEchoesOrGeneratesSessionID(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, "sk-test", CompleterFunc(replyByAgent))
	ctx := context.Background()

	got, err := svc.Exchange(ctx, ExchangeRequest{Message: "m", SessionID: "session_42_xyz", Stage: domain.StageAlignment})
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if got.SessionID != "session_42_xyz" {
		t.Fatalf("expected echoed session id, got %q", got.SessionID)
	}

	first, err := svc.Exchange(ctx, ExchangeRequest{Message: "m", Stage: domain.StageAlignment})
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	second, err := svc.Exchange(ctx, ExchangeRequest{Message: "m", Stage: domain.StageAlignment})
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if first.SessionID == second.SessionID {
		t.Fatalf("expected distinct generated ids, got %q twice", first.SessionID)
	}
}

func TestExchangeClampsAtCompletionAndKeepsUnknownStage(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, "sk-test", CompleterFunc(replyByAgent))

	tests := []struct {
		stage domain.Stage
		want  domain.Stage
	}{
		{domain.StageResonance, domain.StageCompletion},
		{domain.StageCompletion, domain.StageCompletion},
		{domain.Stage("bogus"), domain.Stage("bogus")},
	}
	for _, tt := range tests {
		got, err := svc.Exchange(context.Background(), ExchangeRequest{Message: "m", Stage: tt.stage})
		if err != nil {
			t.Fatalf("Exchange(%q) failed: %v", tt.stage, err)
		}
		if got.NextStage != tt.want {
			t.Errorf("Exchange(%q) next stage = %q, want %q", tt.stage, got.NextStage, tt.want)
		}
	}
}

func TestExchangeRejectsEmptyMessageWithoutCalling(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	svc, m := newTestService(t, "sk-test", CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		calls.Add(1)
		return replyByAgent(ctx, req)
	}))

	for _, msg := range []string{"", "   \n\t"} {
		_, err := svc.Exchange(context.Background(), ExchangeRequest{Message: msg, Stage: domain.StagePreparation})
		if !errors.Is(err, ErrMessageRequired) {
			t.Fatalf("Exchange(%q) error = %v, want ErrMessageRequired", msg, err)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no completion calls, got %d", calls.Load())
	}
	if v := testutil.ToFloat64(m.ExchangesTotal.WithLabelValues(metrics.OutcomeClientError)); v != 2 {
		t.Fatalf("expected 2 client errors, got %v", v)
	}
}

func TestExchangeWithoutCredential(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	svc, _ := newTestService(t, "", CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		calls.Add(1)
		return replyByAgent(ctx, req)
	}))
	if svc.Configured() {
		t.Fatal("expected service without credential to be unconfigured")
	}

	_, err := svc.Exchange(context.Background(), ExchangeRequest{Message: "hello", Stage: domain.StagePreparation})
	if !errors.Is(err, ErrCredentialMissing) {
		t.Fatalf("error = %v, want ErrCredentialMissing", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no completion calls, got %d", calls.Load())
	}
}

func TestExchangeFailsWhenEitherAgentFails(t *testing.T) {
	t.Parallel()

	for _, failing := range domain.Agents() {
		failing := failing
		t.Run(string(failing), func(t *testing.T) {
			t.Parallel()

			upstream := errors.New("rate limited")
			svc, m := newTestService(t, "sk-test", CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
				if req.Agent == failing {
					return "", upstream
				}
				return replyByAgent(ctx, req)
			}))

			got, err := svc.Exchange(context.Background(), ExchangeRequest{Message: "hello", Stage: domain.StagePreparation})
			if got != nil {
				t.Fatalf("expected no result on failure, got %+v", got)
			}
			var ue *UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if ue.Agent != failing {
				t.Errorf("expected failing agent %s, got %s", failing, ue.Agent)
			}
			if !errors.Is(err, upstream) {
				t.Errorf("expected wrapped upstream error, got %v", err)
			}
			if v := testutil.ToFloat64(m.ExchangesTotal.WithLabelValues(metrics.OutcomeUpstreamError)); v != 1 {
				t.Errorf("expected 1 upstream error, got %v", v)
			}
		})
	}
}

func TestExchangeRunsAgentsConcurrently(t *testing.T) {
	t.Parallel()

	var started sync.WaitGroup
	started.Add(2)
	bothStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(bothStarted)
	}()

	svc, _ := newTestService(t, "sk-test", CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		started.Done()
		select {
		case <-bothStarted:
			return replyByAgent(ctx, req)
		case <-time.After(2 * time.Second):
			return "", errors.New("calls were serialized")
		}
	}))

	if _, err := svc.Exchange(context.Background(), ExchangeRequest{Message: "hello", Stage: domain.StagePreparation}); err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
}

func TestExchangeFailureDoesNotCancelSibling(t *testing.T) {
	t.Parallel()

	var siblingErr atomic.Value
	svc, _ := newTestService(t, "sk-test", CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		if req.Agent == domain.AgentFacilitator {
			return "", errors.New("boom")
		}
		time.Sleep(50 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			siblingErr.Store(err)
		}
		return "P-reply", nil
	}))

	if _, err := svc.Exchange(context.Background(), ExchangeRequest{Message: "hello", Stage: domain.StagePreparation}); err == nil {
		t.Fatal("expected exchange error")
	}
	if v := siblingErr.Load(); v != nil {
		t.Fatalf("sibling context was cancelled: %v", v)
	}
}

func TestNewServicePropagatesFactoryError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("bad key")
	_, err := NewService(ServiceConfig{
		APIKey:       "sk-test",
		NewCompleter: func(string) (Completer, error) { return nil, wantErr },
		Logger:       quietLogger(),
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected factory error, got %v", err)
	}
}
