package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/finance-forecast/internal/app"
	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/config"
	"github.com/dvloznov/finance-forecast/internal/cronexpr"
	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/jobs"
	"github.com/dvloznov/finance-forecast/internal/jobs/inmemory"
	"github.com/dvloznov/finance-forecast/internal/logger"
)

const cronIDPrefix = "forecast:"

func main() {
	// Initialize logger
	log := logger.New()
	cfg := config.Load(log)

	var (
		accounts = flag.String("accounts", "", "Comma-separated account IDs to regenerate on schedule")
		ruleType = flag.String("type", string(domain.FrequencyDaily), "Schedule frequency: daily, weekly, monthly or yearly")
		step     = flag.Int("step", 1, "Schedule step (every N periods)")
		weekday  = flag.Int("day-of-week", -1, "Weekday for weekly schedules, 0=Sunday (default: anchor weekday)")
		at       = flag.String("at", "06:00", "Local time of day the schedule fires (HH:MM)")
		workers  = flag.Int("workers", 2, "Number of concurrent forecast workers")
	)
	flag.Parse()

	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Msg("Invalid LOG_LEVEL, keeping default")
	}

	ids := splitAccounts(*accounts)
	if len(ids) == 0 {
		log.Fatal().Msg("Error: --accounts is required")
	}

	rule := domain.FrequencyRule{Type: domain.FrequencyType(*ruleType), StepVariable: step}
	if *weekday >= 0 {
		rule.DayOfWeek = weekday
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clock.Real{}
	stack, err := app.Open(ctx, cfg, clk, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer stack.Close()

	// Initialize job store and queue
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore, inmemory.WithWorkers(*workers))

	if err := jobQueue.Start(ctx, stack.Runner.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	trigger := func(id string) {
		now := clk.Now()
		job := &jobs.ForecastJob{
			AccountID: strings.TrimPrefix(id, cronIDPrefix),
			From:      now,
			To:        now.Add(cfg.Horizon),
			Trigger:   jobs.TriggerCron,
		}
		if err := jobQueue.PublishForecast(ctx, job); err != nil {
			log.Error().Err(err).Str("cron_id", id).Msg("Failed to enqueue scheduled forecast")
		}
	}

	registrar := cronexpr.NewLocalRegistrar(time.Local, trigger, log)

	anchor, err := anchorAt(clk.Now(), *at)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid --at")
	}

	expr, err := cronexpr.FromRule(rule, anchor)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid schedule")
	}

	for _, accountID := range ids {
		if _, err := registrar.Register(expr, cronIDPrefix+accountID); err != nil {
			log.Fatal().Err(err).Str("account_id", accountID).Msg("Failed to register schedule")
		}
	}

	registrar.Start()
	for _, s := range registrar.Schedules() {
		log.Info().Str("cron_id", s.ID).Str("expr", s.Expr).Time("next", s.Next).Msg("Forecast scheduled")
	}

	log.Info().Msg("Worker service started, waiting for schedules...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	registrar.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}

func splitAccounts(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// anchorAt returns today at the HH:MM time of day in now's location.
func anchorAt(now time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}
