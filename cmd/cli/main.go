package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-forecast/internal/app"
	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/config"
	"github.com/dvloznov/finance-forecast/internal/cronexpr"
	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/export"
	"github.com/dvloznov/finance-forecast/internal/forecast"
	"github.com/dvloznov/finance-forecast/internal/logger"
	"github.com/dvloznov/finance-forecast/internal/notionsync"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load(log)
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Msg("Invalid LOG_LEVEL, keeping default")
	}

	switch os.Args[1] {
	case "forecast":
		runForecast(log, cfg)
	case "run":
		runJob(log, cfg)
	case "sync-notion":
		runSyncNotion(log, cfg)
	case "explain":
		runExplain(log, cfg)
	case "fetch":
		runFetch(log)
	case "cron":
		runCron(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Forecast CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  forecast     Compute and print a forecast for an account")
	fmt.Println("  run          Compute a forecast and write it to every configured output")
	fmt.Println("  sync-notion  Mirror a forecast into the Notion forecast database")
	fmt.Println("  explain      Print a plain-language summary of a forecast")
	fmt.Println("  fetch        Print a previously exported forecast from GCS")
	fmt.Println("  cron         Print the cron expression for a frequency rule")
	fmt.Println("  help         Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// windowFlags registers the flags shared by every forecast command.
type windowFlags struct {
	account *string
	from    *string
	to      *string
	store   *string
}

func addWindowFlags(fs *flag.FlagSet, cfg *config.Config) windowFlags {
	return windowFlags{
		account: fs.String("account", "", "Account ID (required)"),
		from:    fs.String("from", "", "Window start YYYY-MM-DD (default: today)"),
		to:      fs.String("to", "", "Window end YYYY-MM-DD (default: from + FORECAST_HORIZON_DAYS)"),
		store:   fs.String("store", cfg.RecordStore, "Record store: bigquery or postgres"),
	}
}

// computeForecast opens the record store and computes the flagged window.
func computeForecast(ctx context.Context, log zerolog.Logger, cfg *config.Config, wf windowFlags) (*app.Stack, *forecast.Forecast) {
	if *wf.account == "" {
		log.Fatal().Msg("Error: --account is required")
	}

	clk := clock.Real{}
	from, to, err := parseWindow(clk.Now(), *wf.from, *wf.to, cfg.Horizon)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid window")
	}

	cfg.RecordStore = *wf.store
	stack, err := app.Open(ctx, cfg, clk, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	fc, err := stack.Forecast.Forecast(ctx, *wf.account, from, to)
	if err != nil {
		stack.Close()
		log.Fatal().Err(err).Msg("Forecast failed")
	}
	return stack, fc
}

func runForecast(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("forecast", flag.ExitOnError)
	wf := addWindowFlags(fs, cfg)
	asJSON := fs.Bool("json", false, "Print the forecast as JSON")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	stack, fc := computeForecast(ctx, log, cfg, wf)
	defer stack.Close()

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fc); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode forecast")
		}
		return
	}

	printForecast(fc)
}

func printForecast(fc *forecast.Forecast) {
	fmt.Printf("\n=== Forecast %s (%s to %s) ===\n", fc.AccountID,
		fc.From.Format(time.DateOnly), fc.To.Format(time.DateOnly))
	fmt.Printf("Starting balance: %s\n\n", fc.StartingBalance.StringFixed(2))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Date\tKind\tTitle\tTotal\tBalance\t")
	for _, tx := range fc.Transactions {
		balance := ""
		if tx.Balance.Valid {
			balance = tx.Balance.Decimal.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			tx.Date.Format(time.DateOnly), tx.SourceKind, tx.Title, tx.TotalAmount.StringFixed(2), balance)
	}
	w.Flush()

	in, out := fc.Totals()
	fmt.Printf("\nIn: %s  Out: %s  Ending balance: %s\n", in.StringFixed(2), out.StringFixed(2), fc.EndingBalance().StringFixed(2))
	if low, at, ok := fc.LowestBalance(); ok {
		fmt.Printf("Lowest balance: %s on %s\n", low.StringFixed(2), at.Format(time.DateOnly))
	}
	for _, p := range fc.LoanPayoffs {
		if p.FullyPaidBackDate == nil {
			fmt.Printf("Loan %s not paid off by %s\n", p.LoanID, fc.To.Format(time.DateOnly))
			continue
		}
		fmt.Printf("Loan %s paid off on %s\n", p.LoanID, p.FullyPaidBackDate.Format(time.DateOnly))
	}
	for _, f := range fc.Failures {
		fmt.Printf("Skipped %s %s: %s\n", f.Kind, f.RecordID, f.Message)
	}
}

func runJob(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	wf := addWindowFlags(fs, cfg)
	fs.Parse(os.Args[2:])

	if *wf.account == "" {
		log.Fatal().Msg("Error: --account is required")
	}

	clk := clock.Real{}
	from, to, err := parseWindow(clk.Now(), *wf.from, *wf.to, cfg.Horizon)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid window")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cfg.RecordStore = *wf.store
	stack, err := app.Open(ctx, cfg, clk, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer stack.Close()

	_, summary, err := stack.Runner.Run(ctx, *wf.account, from, to)
	if err != nil {
		log.Fatal().Err(err).Msg("Forecast run failed")
	}

	fmt.Printf("Transactions:   %d\n", summary.Transactions)
	fmt.Printf("Ending balance: %s\n", summary.EndingBalance.StringFixed(2))
	fmt.Printf("Lowest balance: %s\n", summary.LowestBalance.StringFixed(2))
	if summary.ExportURI != "" {
		fmt.Printf("Exported to:    %s\n", summary.ExportURI)
	}
	if summary.RecordFailures > 0 {
		fmt.Printf("Skipped records: %d\n", summary.RecordFailures)
	}
}

func runSyncNotion(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("sync-notion", flag.ExitOnError)
	wf := addWindowFlags(fs, cfg)
	notionToken := fs.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN env)")
	notionDBID := fs.String("notion-db-id", cfg.NotionForecastDBID, "Notion database ID (or set NOTION_FORECAST_DB_ID env)")
	dryRun := fs.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	fs.Parse(os.Args[2:])

	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	stack, fc := computeForecast(ctx, log, cfg, wf)
	defer stack.Close()

	log.Info().
		Str("account_id", fc.AccountID).
		Int("transactions", len(fc.Transactions)).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	result, err := notionsync.SyncForecast(ctx, notionsync.NewClient(*notionToken), *notionDBID, fc, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Created: %d  Updated: %d  Archived: %d  Failed: %d\n",
		result.Created, result.Updated, result.Archived, result.Failed)
}

func runExplain(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	wf := addWindowFlags(fs, cfg)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	stack, fc := computeForecast(ctx, log, cfg, wf)
	defer stack.Close()

	if stack.Summarizer == nil {
		log.Fatal().Msg("Gemini is not configured; set GOOGLE_API_KEY")
	}

	text, err := stack.Summarizer.Summarize(ctx, fc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to summarize forecast")
	}
	fmt.Println(text)
}

func runFetch(log zerolog.Logger) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	uri := fs.String("uri", "", "gs:// URI of an exported forecast (required)")
	fs.Parse(os.Args[2:])

	if *uri == "" {
		log.Fatal().Msg("Error: --uri is required")
	}
	bucket, _, err := export.ParseURI(*uri)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid --uri")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gcs, err := export.NewGCSStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer gcs.Close()

	fc, err := export.NewExporter(gcs, bucket).FetchForecast(ctx, *uri)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch forecast")
	}
	printForecast(fc)
}

func runCron(log zerolog.Logger) {
	fs := flag.NewFlagSet("cron", flag.ExitOnError)
	ruleType := fs.String("type", "", "Frequency: daily, weekly, monthly or yearly (required)")
	step := fs.Int("step", 1, "Every N periods")
	dayOfWeek := fs.Int("day-of-week", -1, "Weekday 0-6, 0=Sunday")
	weekOfMonth := fs.Int("week-of-month", -1, "Extra weeks after the first matching weekday, 0-4")
	monthOfYear := fs.Int("month-of-year", -1, "Month 0-11, 0=January")
	at := fs.String("at", "", "Anchor instant, RFC 3339 (default: now)")
	fs.Parse(os.Args[2:])

	rule := domain.FrequencyRule{
		Type:         domain.FrequencyType(*ruleType),
		StepVariable: step,
		DayOfWeek:    optional(*dayOfWeek),
		WeekOfMonth:  optional(*weekOfMonth),
		MonthOfYear:  optional(*monthOfYear),
	}

	anchor := time.Now()
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			log.Fatal().Err(err).Msg("Error: invalid --at, expected RFC 3339")
		}
		anchor = t
	}

	expr, err := cronexpr.FromRule(rule, anchor)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid frequency rule")
	}
	fmt.Println(expr)
}
