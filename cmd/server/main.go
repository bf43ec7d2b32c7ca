// Symbient Academy - dual-agent partnership training server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ashureev/symbient-academy/internal/agent"
	"github.com/ashureev/symbient-academy/internal/api"
	"github.com/ashureev/symbient-academy/internal/config"
	"github.com/ashureev/symbient-academy/internal/metrics"
	"github.com/ashureev/symbient-academy/internal/training"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "model", cfg.Completion.Model)

	catalog, err := training.LoadCatalog()
	if err != nil {
		slog.Error("Failed to load training catalog", "error", err)
		os.Exit(1)
	}

	m := metrics.New(nil)

	// A missing credential still starts the server; chat requests report it.
	if !cfg.HasCredential() {
		slog.Warn("ANTHROPIC_API_KEY not set, chat requests will fail until it is configured")
	}

	svc, err := agent.NewService(agent.ServiceConfig{
		APIKey: cfg.Completion.APIKey,
		NewCompleter: agent.AnthropicFactory(agent.AnthropicConfig{
			Model:     cfg.Completion.Model,
			MaxTokens: cfg.Completion.MaxTokens,
			BaseURL:   cfg.Completion.BaseURL,
		}, logger),
		Catalog: catalog,
		Timeout: cfg.Completion.Timeout,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		slog.Error("Failed to initialize agent service", "error", err)
		os.Exit(1)
	}

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	// Initialize handlers.
	agentHandler := agent.NewHandler(svc, conversationLogger, cfg.MaxRequestBodySize)
	defer agentHandler.Close()
	catalogHandler := api.NewCatalogHandler(catalog)
	healthHandler := api.NewHealthHandlerWithConfig(cfg)

	r := newRouter(cfg, agentHandler, catalogHandler, healthHandler, m)

	// WriteTimeout must outlast the exchange timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Completion.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
