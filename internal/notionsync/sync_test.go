package notionsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/forecast"
)

// mockNotionService is a mock implementation of NotionService.
type mockNotionService struct {
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePageFunc    func(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	ArchivePageFunc   func(ctx context.Context, pageID string) error
	QueryDatabaseFunc func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)

	created  []notionapi.Properties
	updated  []string
	archived []string
}

func (m *mockNotionService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, properties)
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, databaseID, properties)
	}
	return &notionapi.Page{ID: "new"}, nil
}

func (m *mockNotionService) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.updated = append(m.updated, pageID)
	if m.UpdatePageFunc != nil {
		return m.UpdatePageFunc(ctx, pageID, properties)
	}
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *mockNotionService) ArchivePage(ctx context.Context, pageID string) error {
	m.archived = append(m.archived, pageID)
	if m.ArchivePageFunc != nil {
		return m.ArchivePageFunc(ctx, pageID)
	}
	return nil
}

func (m *mockNotionService) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.QueryDatabaseFunc != nil {
		return m.QueryDatabaseFunc(ctx, databaseID, req)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func page(id, txID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			propTransactionID: &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func testForecast() *forecast.Forecast {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tx := func(id string) domain.GeneratedTransaction {
		return domain.GeneratedTransaction{
			ID:          id,
			SourceKind:  domain.SourceExpense,
			SourceID:    "rent",
			Title:       "Rent",
			Date:        from,
			Amount:      decimal.NewFromInt(-900),
			TotalAmount: decimal.NewFromInt(-900),
		}
	}
	return &forecast.Forecast{
		AccountID:    "acc-1",
		From:         from,
		To:           from.AddDate(0, 1, 0),
		Transactions: []domain.GeneratedTransaction{tx("tx-1"), tx("tx-2")},
	}
}

func TestSyncForecast(t *testing.T) {
	notion := &mockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			if req.StartCursor == "" {
				return &notionapi.DatabaseQueryResponse{
					Results:    []notionapi.Page{page("p-1", "tx-1"), page("p-stale", "tx-old")},
					HasMore:    true,
					NextCursor: "next",
				}, nil
			}
			return &notionapi.DatabaseQueryResponse{
				Results: []notionapi.Page{page("p-dup", "tx-1"), page("p-blank", "")},
			}, nil
		},
	}

	res, err := SyncForecast(context.Background(), notion, "db", testForecast(), false)
	if err != nil {
		t.Fatalf("SyncForecast() error = %v", err)
	}

	want := SyncResult{Created: 1, Updated: 1, Archived: 3}
	if res != want {
		t.Errorf("SyncForecast() = %+v, want %+v", res, want)
	}
	if len(notion.updated) != 1 || notion.updated[0] != "p-1" {
		t.Errorf("updated = %v, want [p-1]", notion.updated)
	}
	if len(notion.archived) != 3 {
		t.Errorf("archived = %v", notion.archived)
	}
	if got := notion.created[0][propTransactionID].(notionapi.RichTextProperty).RichText[0].Text.Content; got != "tx-2" {
		t.Errorf("created transaction = %q, want tx-2", got)
	}
}

func TestSyncForecast_DryRun(t *testing.T) {
	notion := &mockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{page("p-stale", "tx-old")}}, nil
		},
	}

	res, err := SyncForecast(context.Background(), notion, "db", testForecast(), true)
	if err != nil {
		t.Fatal(err)
	}
	if res != (SyncResult{Created: 2, Archived: 1}) {
		t.Errorf("SyncForecast() = %+v", res)
	}
	if len(notion.created)+len(notion.updated)+len(notion.archived) != 0 {
		t.Error("dry run wrote to Notion")
	}
}

func TestSyncForecast_Errors(t *testing.T) {
	t.Run("query failure aborts", func(t *testing.T) {
		notion := &mockNotionService{
			QueryDatabaseFunc: func(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
				return nil, errors.New("unauthorized")
			},
		}
		if _, err := SyncForecast(context.Background(), notion, "db", testForecast(), false); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("page failures are counted", func(t *testing.T) {
		notion := &mockNotionService{
			CreatePageFunc: func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
				return nil, errors.New("rate limited")
			},
		}
		res, err := SyncForecast(context.Background(), notion, "db", testForecast(), false)
		if err != nil {
			t.Fatal(err)
		}
		if res.Failed != 2 || res.Created != 0 {
			t.Errorf("SyncForecast() = %+v", res)
		}
	})
}

func TestTransactionToProperties(t *testing.T) {
	tx := domain.GeneratedTransaction{
		ID:          "tx-1",
		SourceKind:  domain.SourceLoan,
		SourceID:    "loan-1",
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("-250.50"),
		TotalAmount: decimal.RequireFromString("-250.50"),
		Balance:     decimal.NewNullDecimal(decimal.RequireFromString("1000.25")),
	}

	props := TransactionToProperties("acc-1", tx)

	title := props[propName].(notionapi.TitleProperty)
	if title.Title[0].Text.Content != "loan" {
		t.Errorf("title = %q, want source kind fallback", title.Title[0].Text.Content)
	}
	if got := props[propAmount].(notionapi.NumberProperty).Number; got != -250.5 {
		t.Errorf("amount = %v", got)
	}
	if got := props[propBalance].(notionapi.NumberProperty).Number; got != 1000.25 {
		t.Errorf("balance = %v", got)
	}
	if got := props[propSource].(notionapi.SelectProperty).Select.Name; got != "loan" {
		t.Errorf("source = %q", got)
	}
	if _, ok := props[propDescription]; ok {
		t.Error("empty description should be omitted")
	}

	tx.Balance = decimal.NullDecimal{}
	if _, ok := TransactionToProperties("acc-1", tx)[propBalance]; ok {
		t.Error("unset balance should be omitted")
	}
}
