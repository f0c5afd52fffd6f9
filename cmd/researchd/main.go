// researchd server — exposes the run HTTP API, executes research and
// data-query workflows, and retains finished work logs for conversational
// reuse.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/regulata/researchd/pkg/agent"
	"github.com/regulata/researchd/pkg/api"
	"github.com/regulata/researchd/pkg/archive"
	"github.com/regulata/researchd/pkg/cleanup"
	"github.com/regulata/researchd/pkg/config"
	"github.com/regulata/researchd/pkg/executor"
	"github.com/regulata/researchd/pkg/orchestrator"
	"github.com/regulata/researchd/pkg/registry"
	"github.com/regulata/researchd/pkg/version"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to environment file")
	flag.Parse()

	// Load .env; a missing file just means the environment is already set.
	if err := godotenv.Load(*envFile); err != nil {
		slog.Warn("Could not load env file, continuing with existing environment",
			"path", *envFile, "error", err)
	} else {
		slog.Info("Loaded environment", "path", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting researchd",
		"version", version.Full(),
		"addr", cfg.Server.Addr(),
		"max_concurrent_runs", cfg.Executor.MaxConcurrentRuns)

	ctx := context.Background()

	if cfg.Model.APIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	model := agent.NewOpenAIModel(
		cfg.Model.APIKey,
		cfg.Model.Model,
		cfg.Model.BaseURL,
		cfg.Model.Temperature,
		cfg.Model.MaxTokens,
		cfg.Model.Timeout,
	)
	slog.Info("Model client initialized", "model", cfg.Model.Model)

	reg := registry.New()
	exec := executor.New(cfg.Executor.MaxConcurrentRuns)

	facadeOpts := []orchestrator.Option{
		orchestrator.WithWorkLogTTL(cfg.Retention.WorkLogTTL),
	}

	// Archiving is optional; without Redis finished runs only live in the
	// registry until their residency window lapses.
	if cfg.Archive.Enabled() {
		archiver, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			slog.Error("Failed to connect to archive Redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := archiver.Close(); err != nil {
				slog.Error("Error closing archive client", "error", err)
			}
		}()
		facadeOpts = append(facadeOpts, orchestrator.WithArchiver(archiver))
		slog.Info("Run archiving enabled", "addr", cfg.Archive.RedisAddr, "ttl", cfg.Archive.TTL)
	}

	facade := orchestrator.New(reg, exec, model, facadeOpts...)

	cleanupSvc := cleanup.NewService(cfg.Retention, reg)
	cleanupSvc.Start(ctx)
	defer cleanupSvc.Stop()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewServer(facade).Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("researchd started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// Stop accepting requests first, then cancel active runs and wait for
	// them to observe the cancellation.
	httpShutdownCtx, httpCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer httpCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	exec.Shutdown(cfg.Executor.GracefulShutdownTimeout)

	slog.Info("Shutdown complete")
}
