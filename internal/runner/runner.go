// Package runner executes forecast jobs: it computes the forecast and hands
// it to the configured outputs.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-forecast/internal/forecast"
	"github.com/dvloznov/finance-forecast/internal/jobs"
	"github.com/dvloznov/finance-forecast/internal/logger"
	"github.com/dvloznov/finance-forecast/internal/notionsync"
)

// Forecaster computes a forecast for an account and window.
type Forecaster interface {
	Forecast(ctx context.Context, accountID string, from, to time.Time) (*forecast.Forecast, error)
}

// Sink stores projected transactions.
type Sink interface {
	InsertProjectedTransactions(ctx context.Context, fc *forecast.Forecast) error
}

// Exporter publishes a forecast document and returns where it was written.
type Exporter interface {
	UploadForecast(ctx context.Context, fc *forecast.Forecast) (string, error)
}

// Mirror copies a forecast into an external workspace.
type Mirror interface {
	Sync(ctx context.Context, fc *forecast.Forecast) (notionsync.SyncResult, error)
}

// Runner runs forecasts and fans them out to its outputs. Outputs left nil
// are skipped.
type Runner struct {
	forecaster Forecaster
	sink       Sink
	exporter   Exporter
	mirror     Mirror
	log        zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

func WithSink(s Sink) Option         { return func(r *Runner) { r.sink = s } }
func WithExporter(e Exporter) Option { return func(r *Runner) { r.exporter = e } }
func WithMirror(m Mirror) Option     { return func(r *Runner) { r.mirror = m } }

// New creates a Runner.
func New(forecaster Forecaster, log zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{forecaster: forecaster, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run computes the forecast and writes it to every configured output. The
// sink and exporter are required to succeed; a failing Notion mirror is
// logged and does not fail the run.
func (r *Runner) Run(ctx context.Context, accountID string, from, to time.Time) (*forecast.Forecast, *jobs.ForecastSummary, error) {
	log := logger.WithForecast(r.log, accountID, from, to)
	ctx = logger.WithContext(ctx, log)

	fc, err := r.forecaster.Forecast(ctx, accountID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("Run: %w", err)
	}

	if r.sink != nil {
		if err := r.sink.InsertProjectedTransactions(ctx, fc); err != nil {
			return nil, nil, fmt.Errorf("Run: store projection: %w", err)
		}
	}

	var uri string
	if r.exporter != nil {
		uri, err = r.exporter.UploadForecast(ctx, fc)
		if err != nil {
			return nil, nil, fmt.Errorf("Run: export: %w", err)
		}
		log.Info().Str("uri", uri).Msg("Forecast exported")
	}

	if r.mirror != nil {
		if _, err := r.mirror.Sync(ctx, fc); err != nil {
			log.Warn().Err(err).Msg("Notion mirror failed")
		}
	}

	return fc, Summarize(fc, uri), nil
}

// HandleJob is a jobs.JobHandler for forecast jobs. The job's Result is set
// on success.
func (r *Runner) HandleJob(ctx context.Context, job jobs.Job) error {
	fj, ok := job.(*jobs.ForecastJob)
	if !ok {
		return fmt.Errorf("HandleJob: unexpected job type: %T", job)
	}

	r.log.Info().
		Str("job_id", fj.JobID).
		Str("account_id", fj.AccountID).
		Str("trigger", string(fj.Trigger)).
		Int("attempt", fj.RetryCount+1).
		Msg("Processing forecast job")

	_, summary, err := r.Run(ctx, fj.AccountID, fj.From, fj.To)
	if err != nil {
		r.log.Error().Err(err).Str("job_id", fj.JobID).Msg("Forecast job failed")
		return err
	}

	fj.Result = summary
	r.log.Info().
		Str("job_id", fj.JobID).
		Int("transactions", summary.Transactions).
		Str("ending_balance", summary.EndingBalance.String()).
		Msg("Forecast job completed")
	return nil
}

// Summarize condenses a forecast into a job result.
func Summarize(fc *forecast.Forecast, exportURI string) *jobs.ForecastSummary {
	low, _, ok := fc.LowestBalance()
	if !ok {
		low = fc.StartingBalance
	}
	return &jobs.ForecastSummary{
		Transactions:   len(fc.Transactions),
		EndingBalance:  fc.EndingBalance(),
		LowestBalance:  low,
		RecordFailures: len(fc.Failures),
		ExportURI:      exportURI,
	}
}
