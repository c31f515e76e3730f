// Package postgres reads obligation records and balances from PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements forecast.RecordSource and forecast.BalanceSource.
type Store struct {
	db Querier
}

// Open connects a pool to databaseURL and pings it.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("Open: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("Open: ping: %w", err)
	}
	return pool, nil
}

// NewStore wraps a pool or transaction.
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

const frequencySelect = `frequency_type, step_variable, day_of_week, week_of_month, month_of_year`

// collect runs a query and converts every row with toDomain.
func collect[Row interface{ toDomain() (T, error) }, T any](ctx context.Context, db Querier, sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	scanned, err := pgx.CollectRows(rows, pgx.RowToStructByName[Row])
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	out := make([]T, 0, len(scanned))
	for _, row := range scanned {
		v, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) ListExpenses(ctx context.Context, accountID string, until time.Time) ([]domain.Expense, error) {
	out, err := collect[expenseRow, domain.Expense](ctx, s.db, `
		SELECT expense_id, account_id, title, description, amount,
		       COALESCE(tax_rate, 0) AS tax_rate, COALESCE(subsidy_rate, 0) AS subsidy_rate,
		       begin_ts, end_ts, `+frequencySelect+`
		FROM expenses
		WHERE account_id = $1 AND begin_ts <= $2
		ORDER BY begin_ts`, accountID, until)
	if err != nil {
		return nil, fmt.Errorf("ListExpenses: %w", err)
	}
	return out, nil
}

func (s *Store) ListIncomes(ctx context.Context, accountID string, until time.Time) ([]domain.Income, error) {
	out, err := collect[incomeRow, domain.Income](ctx, s.db, `
		SELECT income_id, account_id, title, description, amount,
		       COALESCE(tax_rate, 0) AS tax_rate,
		       begin_ts, end_ts, `+frequencySelect+`
		FROM incomes
		WHERE account_id = $1 AND begin_ts <= $2
		ORDER BY begin_ts`, accountID, until)
	if err != nil {
		return nil, fmt.Errorf("ListIncomes: %w", err)
	}
	return out, nil
}

func (s *Store) ListLoans(ctx context.Context, accountID string, until time.Time) ([]domain.Loan, error) {
	out, err := collect[loanRow, domain.Loan](ctx, s.db, `
		SELECT loan_id, account_id, title, description, principal, plan_payment_amount,
		       COALESCE(interest_rate, 0) AS interest_rate, interest_frequency_type,
		       COALESCE(tax_rate, 0) AS tax_rate, COALESCE(subsidy_rate, 0) AS subsidy_rate,
		       begin_ts, end_ts, `+frequencySelect+`
		FROM loans
		WHERE account_id = $1 AND begin_ts <= $2
		ORDER BY begin_ts`, accountID, until)
	if err != nil {
		return nil, fmt.Errorf("ListLoans: %w", err)
	}
	return out, nil
}

func (s *Store) ListTransfers(ctx context.Context, accountID string, until time.Time) ([]domain.Transfer, error) {
	out, err := collect[transferRow, domain.Transfer](ctx, s.db, `
		SELECT transfer_id, title, description, amount,
		       COALESCE(tax_rate, 0) AS tax_rate, COALESCE(subsidy_rate, 0) AS subsidy_rate,
		       source_account_id, destination_account_id,
		       begin_ts, end_ts, `+frequencySelect+`
		FROM transfers
		WHERE (source_account_id = $1 OR destination_account_id = $1) AND begin_ts <= $2
		ORDER BY begin_ts`, accountID, until)
	if err != nil {
		return nil, fmt.Errorf("ListTransfers: %w", err)
	}
	return out, nil
}

func (s *Store) ListPayrolls(ctx context.Context, accountID string, until time.Time) ([]domain.Payroll, error) {
	out, err := collect[payrollRow, domain.Payroll](ctx, s.db, `
		SELECT payroll_id, account_id, employer_name, gross_pay, net_pay, begin_date, end_date
		FROM payrolls
		WHERE account_id = $1 AND begin_date <= $2::date
		ORDER BY end_date`, accountID, until)
	if err != nil {
		return nil, fmt.Errorf("ListPayrolls: %w", err)
	}
	return out, nil
}

func (s *Store) ListCommuteSchedules(ctx context.Context, accountID string, until time.Time) ([]domain.CommuteSchedule, error) {
	out, err := collect[commuteRow, domain.CommuteSchedule](ctx, s.db, `
		SELECT commute_id, account_id, title, fare_amount,
		       COALESCE(tax_rate, 0) AS tax_rate, COALESCE(subsidy_rate, 0) AS subsidy_rate,
		       day_of_week, start_time::text AS start_time, begin_date, end_date
		FROM commute_schedules
		WHERE account_id = $1 AND begin_date <= $2::date
		ORDER BY begin_date`, accountID, until)
	if err != nil {
		return nil, fmt.Errorf("ListCommuteSchedules: %w", err)
	}
	return out, nil
}

func (s *Store) ListWishlistItems(ctx context.Context, accountID string) ([]domain.WishlistItem, error) {
	out, err := collect[wishlistRow, domain.WishlistItem](ctx, s.db, `
		SELECT wishlist_item_id, account_id, title, description, amount,
		       COALESCE(tax_rate, 0) AS tax_rate, date_available, COALESCE(priority, 0) AS priority
		FROM wishlist_items
		WHERE account_id = $1
		ORDER BY priority NULLS LAST, wishlist_item_id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("ListWishlistItems: %w", err)
	}
	return out, nil
}

// CurrentBalance returns the latest balance snapshot at or before at, or
// zero when the account has none.
func (s *Store) CurrentBalance(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.QueryRow(ctx, `
		SELECT balance
		FROM account_balances
		WHERE account_id = $1 AND as_of_ts <= $2
		ORDER BY as_of_ts DESC
		LIMIT 1`, accountID, at).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("CurrentBalance: %w", err)
	}
	return balance, nil
}
