package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/iterator"
)

// Target is a database that records which migrations it has applied.
type Target interface {
	EnsureSchemaMigrations(ctx context.Context) error
	Applied(ctx context.Context) ([]AppliedMigration, error)
	// Apply runs m and records it.
	Apply(ctx context.Context, m Migration, appliedBy string) error
	Close() error
}

type bigQueryTarget struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

func newBigQueryTarget(ctx context.Context, projectID, datasetID string) (*bigQueryTarget, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("newBigQueryTarget: creating client: %w", err)
	}
	return &bigQueryTarget{client: client, projectID: projectID, datasetID: datasetID}, nil
}

func (t *bigQueryTarget) table() string {
	return "`" + t.projectID + "." + t.datasetID + ".schema_migrations`"
}

func (t *bigQueryTarget) run(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

func (t *bigQueryTarget) EnsureSchemaMigrations(ctx context.Context) error {
	q := t.client.Query(`
		CREATE TABLE IF NOT EXISTS ` + t.table() + ` (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`)
	if err := t.run(ctx, q); err != nil {
		return fmt.Errorf("EnsureSchemaMigrations: %w", err)
	}
	return nil
}

func (t *bigQueryTarget) Applied(ctx context.Context) ([]AppliedMigration, error) {
	q := t.client.Query(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM ` + t.table() + `
		ORDER BY version ASC
	`)
	it, err := q.Read(ctx)
	if err != nil {
		// If table doesn't exist yet, return empty list
		if strings.Contains(err.Error(), "Not found") {
			return []AppliedMigration{}, nil
		}
		return nil, fmt.Errorf("Applied: reading applied migrations: %w", err)
	}

	var applied []AppliedMigration
	for {
		var row struct {
			Version   int64
			Name      string
			AppliedAt time.Time
			Checksum  bigquery.NullString
			AppliedBy bigquery.NullString
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Applied: iterating results: %w", err)
		}

		applied = append(applied, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}

	return applied, nil
}

func (t *bigQueryTarget) Apply(ctx context.Context, m Migration, appliedBy string) error {
	if err := t.run(ctx, t.client.Query(m.SQL)); err != nil {
		return fmt.Errorf("Apply: executing: %w", err)
	}

	q := t.client.Query(`
		INSERT INTO ` + t.table() + `
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	}
	if err := t.run(ctx, q); err != nil {
		return fmt.Errorf("Apply: recording: %w", err)
	}
	return nil
}

func (t *bigQueryTarget) Close() error {
	return t.client.Close()
}

// postgresTarget applies each migration and its bookkeeping row in one
// transaction.
type postgresTarget struct {
	pool *pgxpool.Pool
}

func newPostgresTarget(ctx context.Context, databaseURL string) (*postgresTarget, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("newPostgresTarget: connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("newPostgresTarget: ping: %w", err)
	}
	return &postgresTarget{pool: pool}, nil
}

func (t *postgresTarget) EnsureSchemaMigrations(ctx context.Context) error {
	_, err := t.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			name        TEXT NOT NULL,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			checksum    TEXT,
			applied_by  TEXT
		)`)
	if err != nil {
		return fmt.Errorf("EnsureSchemaMigrations: %w", err)
	}
	return nil
}

func (t *postgresTarget) Applied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := t.pool.Query(ctx, `
		SELECT version, name, applied_at, COALESCE(checksum, ''), COALESCE(applied_by, '')
		FROM schema_migrations
		ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("Applied: %w", err)
	}

	applied, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AppliedMigration, error) {
		var am AppliedMigration
		err := row.Scan(&am.Version, &am.Name, &am.AppliedAt, &am.Checksum, &am.AppliedBy)
		return am, err
	})
	if err != nil {
		return nil, fmt.Errorf("Applied: scanning: %w", err)
	}
	return applied, nil
}

func (t *postgresTarget) Apply(ctx context.Context, m Migration, appliedBy string) error {
	err := pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("executing: %w", err)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO schema_migrations (version, name, checksum, applied_by)
			VALUES ($1, $2, $3, $4)`, m.Version, m.Name, m.Checksum, appliedBy)
		if err != nil {
			return fmt.Errorf("recording: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("Apply: %w", err)
	}
	return nil
}

func (t *postgresTarget) Close() error {
	t.pool.Close()
	return nil
}
