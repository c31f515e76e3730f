package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finance-forecast/internal/forecast"
)

// ForecastSink stores projected transactions in BigQuery.
type ForecastSink struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewForecastSinkWithClient creates a sink sharing an existing client.
func NewForecastSinkWithClient(client *bigquery.Client, projectID, datasetID string) *ForecastSink {
	return &ForecastSink{client: client, projectID: projectID, datasetID: datasetID}
}

// InsertProjectedTransactions replaces the stored projection of the forecast's account and
// window with fc.Transactions.
func (s *ForecastSink) InsertProjectedTransactions(ctx context.Context, fc *forecast.Forecast) error {
	if err := s.deleteWindow(ctx, fc.AccountID, fc.From, fc.To); err != nil {
		return fmt.Errorf("InsertProjectedTransactions: %w", err)
	}

	created := time.Now().UTC()
	rows := make([]*ProjectedTransactionRow, 0, len(fc.Transactions))
	for _, tx := range fc.Transactions {
		rows = append(rows, NewProjectedTransactionRow(fc.AccountID, fc.From, fc.To, tx, created))
	}
	if err := InsertProjectedTransactionsWithClient(ctx, s.client, s.projectID, s.datasetID, rows); err != nil {
		return fmt.Errorf("InsertProjectedTransactions: %w", err)
	}
	return nil
}

// InsertProjectedTransactionsWithClient inserts a batch of rows into
// projected_transactions using the provided BigQuery client.
func InsertProjectedTransactionsWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, rows []*ProjectedTransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.DatasetInProject(projectID, datasetID).Table(projectedTransactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertProjectedTransactions: inserting rows: %w", err)
	}
	return nil
}

func (s *ForecastSink) deleteWindow(ctx context.Context, accountID string, from, to time.Time) error {
	q := s.client.Query(`
		DELETE FROM ` + "`" + s.projectID + "." + s.datasetID + "." + projectedTransactionsTable + "`" + `
		WHERE account_id = @account_id
		  AND transaction_ts >= @from
		  AND transaction_ts <= @to
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "from", Value: from},
		{Name: "to", Value: to},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
