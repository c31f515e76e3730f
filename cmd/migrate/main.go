package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-forecast/internal/config"
	"github.com/dvloznov/finance-forecast/internal/logger"
)

func main() {
	log := logger.New()
	cfg := config.Load(log)

	var (
		target        = flag.String("target", cfg.RecordStore, "Database to migrate: bigquery or postgres")
		projectID     = flag.String("project", cfg.GCPProject, "GCP project ID (bigquery)")
		datasetID     = flag.String("dataset", cfg.BQDataset, "BigQuery dataset ID")
		databaseURL   = flag.String("database-url", cfg.DatabaseURL, "Postgres connection URL (postgres)")
		appliedBy     = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
		migrationsDir = flag.String("migrations", "", "Path to migrations directory (default: migrations/<target>)")
		dryRun        = flag.Bool("dry-run", false, "List pending migrations without applying them")
	)
	flag.Parse()

	if *migrationsDir == "" {
		*migrationsDir = "migrations/" + *target
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var (
		db   Target
		vars map[string]string
		err  error
	)
	switch *target {
	case config.RecordStoreBigQuery:
		if *projectID == "" {
			log.Fatal().Msg("Error: -project flag is required for bigquery")
		}
		db, err = newBigQueryTarget(ctx, *projectID, *datasetID)
		vars = map[string]string{"PROJECT_ID": *projectID, "DATASET_ID": *datasetID}
	case config.RecordStorePostgres:
		if *databaseURL == "" {
			log.Fatal().Msg("Error: -database-url flag is required for postgres")
		}
		db, err = newPostgresTarget(ctx, *databaseURL)
	default:
		log.Fatal().Str("target", *target).Msg("Error: unknown -target")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}
	defer db.Close()

	log.Info().Str("target", *target).Str("dataset", *datasetID).Msg("Connected")

	if err := migrate(ctx, db, *migrationsDir, vars, *appliedBy, *dryRun, log); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

func migrate(ctx context.Context, db Target, dir string, vars map[string]string, appliedBy string, dryRun bool, log zerolog.Logger) error {
	if err := db.EnsureSchemaMigrations(ctx); err != nil {
		return err
	}

	dir, err := resolveDir(dir)
	if err != nil {
		return err
	}

	migrations, err := readMigrations(dir, vars, log)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(migrations)).Str("dir", dir).Msg("Found migration files")

	applied, err := db.Applied(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(applied)).Msg("Found already applied migrations")

	todo, err := pending(migrations, applied)
	if err != nil {
		return err
	}

	if len(todo) == 0 {
		log.Info().Msg("No new migrations to apply. Database is up to date.")
		return nil
	}

	for _, m := range todo {
		mlog := log.With().Int("version", m.Version).Str("name", m.Name).Logger()
		if dryRun {
			mlog.Info().Msg("Pending")
			continue
		}

		mlog.Info().Msg("Applying")
		if err := db.Apply(ctx, m, appliedBy); err != nil {
			return err
		}
		mlog.Info().Msg("Applied")
	}

	if !dryRun {
		log.Info().Int("count", len(todo)).Msg("Successfully applied migrations")
	}
	return nil
}
