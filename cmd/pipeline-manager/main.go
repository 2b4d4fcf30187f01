// cmd/pipeline-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"site-pipeline/internal/app"
	"site-pipeline/internal/common/camunda"
	"site-pipeline/internal/common/config"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/common/observability"
	gs "site-pipeline/internal/workers/site-generation/generate-site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting pipeline manager...", zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := app.New(ctx, cfg, log, app.Options{
		Observability: obs,
		Retry:         app.RetryPolicy{Attempts: 10, Delay: 2 * time.Second},
	})
	if err != nil {
		zapLog.Fatal("pipeline wiring failed", zap.Error(err))
	}
	defer pipeline.Close()

	var notifier gs.Notifier
	if pipeline.Notifier != nil {
		notifier = pipeline.Notifier
	}

	// --- Zeebe worker ---
	var siteWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		zeebe, err := camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda), log)
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		defer zeebe.Close()
		pipeline.Checks["zeebe"] = zeebe.HealthCheck

		workerCfg := &gs.Config{
			Enabled:        true,
			MaxJobsActive:  cfg.Camunda.MaxJobsActive,
			Timeout:        config.GetDuration(cfg.Camunda.Timeout),
			OutputDir:      cfg.OutputDir,
			WriteArtifacts: true,
		}
		handler, err := gs.NewHandler(gs.HandlerOptions{
			Config:    workerCfg,
			Generator: pipeline.Orchestrator,
			Notifier:  notifier,
			Logger:    log,
		})
		if err != nil {
			zapLog.Fatal("failed to create generate-site handler", zap.Error(err))
		}
		siteWorker = camunda.NewWorker(zeebe.GetClient(), camunda.WorkerConfig{
			TaskType:      cfg.Camunda.JobType,
			MaxJobsActive: workerCfg.MaxJobsActive,
			Timeout:       workerCfg.Timeout,
		}, handler, log)
	} else {
		zapLog.Info("zeebe worker disabled")
	}

	// --- HTTP gateway, health and metrics ---
	srv := &server{
		generator: pipeline.Orchestrator,
		notifier:  notifier,
		ready:     pipeline.Ready,
		outputDir: cfg.OutputDir,
		timeout:   config.GetDuration(cfg.Camunda.Timeout),
		logger:    log,
	}
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if siteWorker != nil {
		siteWorker.Stop()
	}

	zapLog.Info("Pipeline manager stopped gracefully")
}
