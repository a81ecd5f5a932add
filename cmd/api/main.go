package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/statement-insights/internal/api/handlers"
	"github.com/dvloznov/statement-insights/internal/api/middleware"
	"github.com/dvloznov/statement-insights/internal/app"
	"github.com/dvloznov/statement-insights/internal/config"
	"github.com/dvloznov/statement-insights/internal/jobs"
	"github.com/dvloznov/statement-insights/internal/jobs/inmemory"
	"github.com/dvloznov/statement-insights/internal/logger"
)

func main() {
	envFile := flag.String("env-file", "", "Optional .env file (defaults to ./.env when present)")
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		boot := logger.New()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - statement uploads will be disabled")
	}

	gen, err := app.NewGenerator(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report generator")
	}

	backends, err := app.OpenBackends(ctx, cfg, cfg.GCSBucket != "", cfg.BigQueryProject != "")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cloud backends")
	}
	defer backends.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.JobWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, jobs.NewAnalyzeHandler(backends.Loader(), gen)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}
	log.Info().Int("workers", cfg.JobWorkers).Msg("Job workers started")

	// Initialize handlers
	analyzeHandler := handlers.NewAnalyzeHandler(gen, cfg.DefaultRisk, log)
	jobsHandler := handlers.NewJobsHandler(jobQueue, jobStore, cfg.DefaultRisk, cfg.JobMaxRetries, log)
	var uploader handlers.ObjectUploader
	if backends.Storage != nil {
		uploader = backends.Storage
	}
	statementsHandler := handlers.NewStatementsHandler(uploader, cfg.GCSBucket, jobsHandler, log)

	mux := newRouter(analyzeHandler, jobsHandler, statementsHandler)

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(
					middleware.Auth(cfg.APIKey)(mux),
				),
			),
		),
	)

	// Report generation makes up to four sequential oracle calls.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
