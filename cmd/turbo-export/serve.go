package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"turbo-export/internal/config"
	"turbo-export/internal/core/render"
	"turbo-export/internal/core/usecases"
	httpShell "turbo-export/internal/shell/http"
	"turbo-export/internal/shell/scheduler"
	"turbo-export/internal/shell/worker"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the export HTTP API, metrics server and retention sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	log.Printf("Starting turbo-export with configuration:")
	log.Printf("  Server: %s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("  Database Type: %s", cfg.Database.Type)
	log.Printf("  Kafka: enabled=%t, brokers=%v", cfg.Kafka.Enabled, cfg.Kafka.Brokers)
	log.Printf("  Metrics: enabled=%t, port=%d", cfg.Metrics.Enabled, cfg.Metrics.Port)
	log.Printf("  Export: output_dir=%s, shared_pool=%d workers/%d queue", cfg.Export.OutputDir, cfg.Export.SharedPoolWorkers, cfg.Export.SharedPoolQueue)

	if err := os.MkdirAll(cfg.Export.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	defaults, err := config.LoadDefaultsFile(cfg.Export.DefaultsFile)
	if err != nil {
		return err
	}

	runRepo, repoCloser, err := openRunRepository(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repoCloser.Close(); closeErr != nil {
			log.Printf("Error closing run repository: %v", closeErr)
		}
	}()

	notifier, notifierCloser, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := notifierCloser.Close(); closeErr != nil {
			log.Printf("Error closing notifier: %v", closeErr)
		}
	}()

	renderer := render.NewRenderer()
	shared := worker.NewSharedPool(cfg.Export.SharedPoolWorkers, cfg.Export.SharedPoolQueue, renderer)

	exportService := usecases.NewExportService(newJobExecutor(shared, renderer), runRepo, notifier)
	runService := usecases.NewExportRunService(runRepo)

	router := httpShell.SetupRoutes(exportService, runService, cfg.Export.OutputDir, defaults)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Create metrics server
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port)
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())

		metricsServer = &http.Server{
			Addr:    metricsAddr,
			Handler: metricsMux,
		}

		go func() {
			log.Printf("Starting metrics server on %s%s", metricsAddr, cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var retention *scheduler.RetentionScheduler
	if cfg.Retention.Enabled {
		retention, err = scheduler.NewRetentionScheduler(runService, cfg.Retention.Schedule, cfg.Retention.MaxAge)
		if err != nil {
			return err
		}
		go func() {
			if err := retention.Start(ctx); err != nil {
				log.Printf("Retention scheduler error: %v", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Printf("Server failed: %v", err)
	}

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Metrics server forced to shutdown: %v", err)
		}
	}

	cancel()
	if retention != nil {
		retention.Stop()
	}

	// Drains queued global_pool jobs before the repository is closed.
	shared.Shutdown()

	log.Println("Server exited")
	return nil
}
