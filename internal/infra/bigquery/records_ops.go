package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

const (
	expensesTable              = "expenses"
	incomesTable               = "incomes"
	loansTable                 = "loans"
	transfersTable             = "transfers"
	payrollsTable              = "payrolls"
	commuteSchedulesTable      = "commute_schedules"
	wishlistItemsTable         = "wishlist_items"
	accountBalancesTable       = "account_balances"
	projectedTransactionsTable = "projected_transactions"
)

// RecordRepository reads obligation records and balances from BigQuery.
// It implements forecast.RecordSource and forecast.BalanceSource.
type RecordRepository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewRecordRepository creates a repository with its own BigQuery client.
func NewRecordRepository(ctx context.Context, projectID, datasetID string) (*RecordRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRecordRepository: creating client: %w", err)
	}
	return NewRecordRepositoryWithClient(client, projectID, datasetID), nil
}

// NewRecordRepositoryWithClient creates a repository around an existing client.
func NewRecordRepositoryWithClient(client *bigquery.Client, projectID, datasetID string) *RecordRepository {
	return &RecordRepository{client: client, projectID: projectID, datasetID: datasetID}
}

// Close closes the BigQuery client connection.
func (r *RecordRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Client exposes the underlying client so other repositories can share it.
func (r *RecordRepository) Client() *bigquery.Client {
	return r.client
}

func (r *RecordRepository) table(name string) string {
	return "`" + r.projectID + "." + r.datasetID + "." + name + "`"
}

// recurringQuery selects rows of a recurring obligation table for one
// account that begin on or before until.
func (r *RecordRepository) recurringQuery(table, accountID string, until time.Time) *bigquery.Query {
	q := r.client.Query(`
		SELECT *
		FROM ` + r.table(table) + `
		WHERE account_id = @account_id
		  AND begin_ts <= @until
		ORDER BY begin_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "until", Value: until},
	}
	return q
}

// readAll drains a query into domain values.
func readAll[Row any, T any](ctx context.Context, q *bigquery.Query, convert func(*Row) T) ([]T, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var out []T
	for {
		var row Row
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		out = append(out, convert(&row))
	}
	return out, nil
}

// ListExpenses returns the account's expenses beginning on or before until.
func (r *RecordRepository) ListExpenses(ctx context.Context, accountID string, until time.Time) ([]domain.Expense, error) {
	out, err := readAll(ctx, r.recurringQuery(expensesTable, accountID, until), (*ExpenseRow).toDomain)
	if err != nil {
		return nil, fmt.Errorf("ListExpenses: %w", err)
	}
	return out, nil
}

// ListIncomes returns the account's incomes beginning on or before until.
func (r *RecordRepository) ListIncomes(ctx context.Context, accountID string, until time.Time) ([]domain.Income, error) {
	out, err := readAll(ctx, r.recurringQuery(incomesTable, accountID, until), (*IncomeRow).toDomain)
	if err != nil {
		return nil, fmt.Errorf("ListIncomes: %w", err)
	}
	return out, nil
}

// ListLoans returns the account's loans beginning on or before until.
func (r *RecordRepository) ListLoans(ctx context.Context, accountID string, until time.Time) ([]domain.Loan, error) {
	out, err := readAll(ctx, r.recurringQuery(loansTable, accountID, until), (*LoanRow).toDomain)
	if err != nil {
		return nil, fmt.Errorf("ListLoans: %w", err)
	}
	return out, nil
}

// ListTransfers returns transfers into or out of the account beginning on or
// before until.
func (r *RecordRepository) ListTransfers(ctx context.Context, accountID string, until time.Time) ([]domain.Transfer, error) {
	q := r.client.Query(`
		SELECT *
		FROM ` + r.table(transfersTable) + `
		WHERE (source_account_id = @account_id OR destination_account_id = @account_id)
		  AND begin_ts <= @until
		ORDER BY begin_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "until", Value: until},
	}

	out, err := readAll(ctx, q, (*TransferRow).toDomain)
	if err != nil {
		return nil, fmt.Errorf("ListTransfers: %w", err)
	}
	return out, nil
}

// ListPayrolls returns the account's payrolls beginning on or before until.
func (r *RecordRepository) ListPayrolls(ctx context.Context, accountID string, until time.Time) ([]domain.Payroll, error) {
	q := r.client.Query(`
		SELECT *
		FROM ` + r.table(payrollsTable) + `
		WHERE account_id = @account_id
		  AND begin_date <= @until
		ORDER BY end_date
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "until", Value: until.Format(time.DateOnly)},
	}

	out, err := readAll(ctx, q, (*PayrollRow).toDomain)
	if err != nil {
		return nil, fmt.Errorf("ListPayrolls: %w", err)
	}
	return out, nil
}

// ListCommuteSchedules returns the account's commute schedules beginning on
// or before until.
func (r *RecordRepository) ListCommuteSchedules(ctx context.Context, accountID string, until time.Time) ([]domain.CommuteSchedule, error) {
	q := r.client.Query(`
		SELECT *
		FROM ` + r.table(commuteSchedulesTable) + `
		WHERE account_id = @account_id
		  AND begin_date <= @until
		ORDER BY begin_date
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "until", Value: until.Format(time.DateOnly)},
	}

	out, err := readAll(ctx, q, (*CommuteScheduleRow).toDomain)
	if err != nil {
		return nil, fmt.Errorf("ListCommuteSchedules: %w", err)
	}
	return out, nil
}

// ListWishlistItems returns the account's wishlist.
func (r *RecordRepository) ListWishlistItems(ctx context.Context, accountID string) ([]domain.WishlistItem, error) {
	q := r.client.Query(`
		SELECT *
		FROM ` + r.table(wishlistItemsTable) + `
		WHERE account_id = @account_id
		ORDER BY priority, wishlist_item_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
	}

	out, err := readAll(ctx, q, (*WishlistItemRow).toDomain)
	if err != nil {
		return nil, fmt.Errorf("ListWishlistItems: %w", err)
	}
	return out, nil
}

// CurrentBalance returns the latest recorded balance at or before at. An
// account without any balance snapshot starts from zero.
func (r *RecordRepository) CurrentBalance(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	q := r.client.Query(`
		SELECT account_id, balance, as_of_ts
		FROM ` + r.table(accountBalancesTable) + `
		WHERE account_id = @account_id
		  AND as_of_ts <= @at
		ORDER BY as_of_ts DESC
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: accountID},
		{Name: "at", Value: at},
	}

	rows, err := readAll(ctx, q, func(row *AccountBalanceRow) decimal.Decimal {
		return ratToDecimal(row.Balance)
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("CurrentBalance: %w", err)
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return rows[0], nil
}
