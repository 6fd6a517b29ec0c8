package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MohanBalaji3/TestCaseStudio/internal/api"
	"github.com/MohanBalaji3/TestCaseStudio/internal/config"
	"github.com/MohanBalaji3/TestCaseStudio/internal/jira"
	"github.com/MohanBalaji3/TestCaseStudio/internal/pipeline"
	"github.com/MohanBalaji3/TestCaseStudio/internal/story"
	"github.com/MohanBalaji3/TestCaseStudio/internal/testcase"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := testcase.NewStats(cfg.StatsWindow)
	opts := story.Options{AcceptanceFieldID: cfg.AcceptanceFieldID}

	// Each batch job carries its own credentials, so workers build a client
	// per job rather than sharing one.
	newClient := func(creds jira.Credentials) pipeline.IssueFetcher {
		return jira.NewClient(creds)
	}

	orch := pipeline.NewOrchestrator(pipeline.Config{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
		MaxRetries:   cfg.MaxRetries,
	}, newClient, stats, opts, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting testcasestudio", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
