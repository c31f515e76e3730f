// Package app wires the configured record store and forecast outputs into
// the services every binary shares.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/config"
	"github.com/dvloznov/finance-forecast/internal/export"
	"github.com/dvloznov/finance-forecast/internal/forecast"
	infraBQ "github.com/dvloznov/finance-forecast/internal/infra/bigquery"
	"github.com/dvloznov/finance-forecast/internal/infra/postgres"
	"github.com/dvloznov/finance-forecast/internal/insights"
	"github.com/dvloznov/finance-forecast/internal/notionsync"
	"github.com/dvloznov/finance-forecast/internal/runner"
)

// Stack holds the shared services. Optional outputs are nil when their
// settings are missing.
type Stack struct {
	Forecast   *forecast.Service
	Runner     *runner.Runner
	Sink       *infraBQ.ForecastSink
	Exporter   *export.Exporter
	Mirror     *notionsync.Mirror
	Summarizer *insights.Summarizer

	closers []func() error
	log     zerolog.Logger
}

// Open connects to the configured record store and builds the outputs
// enabled by cfg. Call Close when done.
func Open(ctx context.Context, cfg *config.Config, clk clock.Clock, log zerolog.Logger) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	s := &Stack{log: log}

	var (
		records  forecast.RecordSource
		balances forecast.BalanceSource
	)

	switch cfg.RecordStore {
	case config.RecordStorePostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })

		store := postgres.NewStore(pool)
		records, balances = store, store
		log.Info().Msg("Reading records from Postgres")

	default:
		repo, err := infraBQ.NewRecordRepository(ctx, cfg.GCPProject, cfg.BQDataset)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		s.closers = append(s.closers, repo.Close)

		records, balances = repo, repo
		s.Sink = infraBQ.NewForecastSinkWithClient(repo.Client(), cfg.GCPProject, cfg.BQDataset)
		log.Info().
			Str("project", cfg.GCPProject).
			Str("dataset", cfg.BQDataset).
			Msg("Reading records from BigQuery")
	}

	s.Forecast = forecast.NewService(records, balances, clk, log)

	if cfg.GCSBucket != "" {
		gcs, err := export.NewGCSStore(ctx)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("Open: %w", err)
		}
		s.closers = append(s.closers, gcs.Close)
		s.Exporter = export.NewExporter(gcs, cfg.GCSBucket)
	} else {
		log.Warn().Msg("No GCS bucket configured - forecast export disabled")
	}

	if cfg.NotionToken != "" && cfg.NotionForecastDBID != "" {
		s.Mirror = notionsync.NewMirror(notionsync.NewClient(cfg.NotionToken), cfg.NotionForecastDBID)
	}

	gen, err := insights.NewGeminiGenerator(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Gemini unavailable - forecast summaries disabled")
	} else {
		s.Summarizer = insights.NewSummarizer(gen, cfg.GeminiModel)
	}

	s.Runner = runner.New(s.Forecast, log, s.runnerOptions()...)
	return s, nil
}

func (s *Stack) runnerOptions() []runner.Option {
	var opts []runner.Option
	if s.Sink != nil {
		opts = append(opts, runner.WithSink(s.Sink))
	}
	if s.Exporter != nil {
		opts = append(opts, runner.WithExporter(s.Exporter))
	}
	if s.Mirror != nil {
		opts = append(opts, runner.WithMirror(s.Mirror))
	}
	return opts
}

// Close releases every client opened by Open.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Error().Err(err).Msg("Failed to close client")
		}
	}
	s.closers = nil
}
