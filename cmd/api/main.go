package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-forecast/internal/api/handlers"
	"github.com/dvloznov/finance-forecast/internal/api/middleware"
	"github.com/dvloznov/finance-forecast/internal/app"
	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/config"
	"github.com/dvloznov/finance-forecast/internal/jobs/inmemory"
	"github.com/dvloznov/finance-forecast/internal/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	cfg := config.Load(log)

	// Parse command-line flags
	var (
		port  = flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
		store = flag.String("store", cfg.RecordStore, "Record store: bigquery or postgres (or set RECORD_STORE env)")
	)
	flag.Parse()
	cfg.Port = *port
	cfg.RecordStore = *store

	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Msg("Invalid LOG_LEVEL, keeping default")
	}

	ctx := context.Background()
	clk := clock.Real{}

	stack, err := app.Open(ctx, cfg, clk, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer stack.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, stack.Runner.HandleJob); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// A nil *insights.Summarizer must stay a nil interface.
	var summarizer handlers.Summarizer
	if stack.Summarizer != nil {
		summarizer = stack.Summarizer
	}

	// Initialize handlers
	forecastHandler := handlers.NewForecastHandler(stack.Forecast, summarizer, clk, cfg.Horizon, log)
	jobsHandler := handlers.NewJobsHandler(jobQueue, jobStore, clk, cfg.Horizon, log)
	cronHandler := handlers.NewCronHandler(clk)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/forecast", middleware.MethodOnly(http.MethodGet, forecastHandler.GetForecast))
	mux.HandleFunc("/api/forecast/jobs", middleware.MethodOnly(http.MethodPost, jobsHandler.EnqueueForecast))
	mux.HandleFunc("/api/jobs", middleware.MethodOnly(http.MethodGet, jobsHandler.ListJobs))
	mux.HandleFunc("/api/jobs/{id}", middleware.MethodOnly(http.MethodGet, jobsHandler.GetJob))
	mux.HandleFunc("/api/cron", middleware.MethodOnly(http.MethodGet, cronHandler.GetExpression))
	mux.HandleFunc("/health", handlers.Health(clk))

	// Apply middleware
	handler := middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
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

	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
