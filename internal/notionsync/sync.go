// Package notionsync mirrors projected transactions into a Notion database.
package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-forecast/internal/forecast"
	"github.com/dvloznov/finance-forecast/internal/logger"
)

const (
	// BatchSize is how many transactions are logged as one batch.
	BatchSize = 100

	// queryPageSize is the Notion maximum page size.
	queryPageSize = 100
)

// SyncResult counts what a sync did. Failed pages are logged and skipped.
type SyncResult struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

// SyncForecast makes the account's pages in the Notion database match
// fc.Transactions. Pages are keyed by transaction ID: existing pages are
// updated, missing ones created, and pages whose transaction is no longer
// projected are archived. With dryRun nothing is written.
func SyncForecast(ctx context.Context, notion NotionService, databaseID string, fc *forecast.Forecast, dryRun bool) (SyncResult, error) {
	log := logger.WithForecast(logger.FromContext(ctx), fc.AccountID, fc.From, fc.To)
	var res SyncResult

	log.Info().
		Int("transaction_count", len(fc.Transactions)).
		Bool("dry_run", dryRun).
		Msg("Starting forecast sync to Notion")

	pages, err := queryAccountPages(ctx, notion, databaseID, fc.AccountID)
	if err != nil {
		return res, fmt.Errorf("SyncForecast: %w", err)
	}

	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]string, len(pages))
	projected := make(map[string]bool, len(fc.Transactions))
	for _, tx := range fc.Transactions {
		projected[tx.ID] = true
	}

	for _, page := range pages {
		txID := extractText(page, propTransactionID)
		pageID := string(page.ID)

		if txID != "" && projected[txID] {
			if _, dup := existing[txID]; !dup {
				existing[txID] = pageID
				continue
			}
		}

		// Stale, duplicate, or not a forecast page at all.
		if dryRun {
			log.Info().Str("transaction_id", txID).Str("page_id", pageID).Msg("[DRY RUN] Would archive stale Notion page")
			res.Archived++
			continue
		}
		if err := notion.ArchivePage(ctx, pageID); err != nil {
			log.Warn().Err(err).Str("transaction_id", txID).Str("page_id", pageID).Msg("Failed to archive stale Notion page")
			res.Failed++
			continue
		}
		res.Archived++
	}

	for i := 0; i < len(fc.Transactions); i += BatchSize {
		end := min(i+BatchSize, len(fc.Transactions))
		batch := fc.Transactions[i:end]

		log.Debug().
			Int("batch_start", i).
			Int("batch_end", end).
			Msg("Processing batch")

		for _, tx := range batch {
			pageID, ok := existing[tx.ID]

			if dryRun {
				if ok {
					res.Updated++
				} else {
					res.Created++
				}
				continue
			}

			props := TransactionToProperties(fc.AccountID, tx)
			if ok {
				if _, err := notion.UpdatePage(ctx, pageID, props); err != nil {
					log.Warn().Err(err).Str("transaction_id", tx.ID).Str("page_id", pageID).Msg("Failed to update Notion page")
					res.Failed++
					continue
				}
				res.Updated++
				continue
			}

			if _, err := notion.CreatePage(ctx, databaseID, props); err != nil {
				log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Failed to create Notion page")
				res.Failed++
				continue
			}
			res.Created++
		}
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Bool("dry_run", dryRun).
		Msg("Forecast sync completed")

	return res, nil
}

// queryAccountPages returns every page of the database that belongs to the
// account, following pagination.
func queryAccountPages(ctx context.Context, notion NotionService, databaseID, accountID string) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			Filter: &notionapi.PropertyFilter{
				Property: propAccountID,
				RichText: &notionapi.TextFilterCondition{Equals: accountID},
			},
			PageSize: queryPageSize,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notion.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAccountPages: %w", err)
		}

		pages = append(pages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return pages, nil
}

// Mirror binds a NotionService to one forecast database.
type Mirror struct {
	notion     NotionService
	databaseID string
}

// NewMirror creates a mirror writing into databaseID.
func NewMirror(notion NotionService, databaseID string) *Mirror {
	return &Mirror{notion: notion, databaseID: databaseID}
}

// Sync runs SyncForecast against the mirror's database.
func (m *Mirror) Sync(ctx context.Context, fc *forecast.Forecast) (SyncResult, error) {
	return SyncForecast(ctx, m.notion, m.databaseID, fc, false)
}
