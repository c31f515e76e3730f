package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/logger"
)

// RecordSource lists the obligations of an account. Recurring records are
// filtered to those beginning at or before until.
type RecordSource interface {
	ListExpenses(ctx context.Context, accountID string, until time.Time) ([]domain.Expense, error)
	ListIncomes(ctx context.Context, accountID string, until time.Time) ([]domain.Income, error)
	ListLoans(ctx context.Context, accountID string, until time.Time) ([]domain.Loan, error)
	ListTransfers(ctx context.Context, accountID string, until time.Time) ([]domain.Transfer, error)
	ListPayrolls(ctx context.Context, accountID string, until time.Time) ([]domain.Payroll, error)
	ListCommuteSchedules(ctx context.Context, accountID string, until time.Time) ([]domain.CommuteSchedule, error)
	ListWishlistItems(ctx context.Context, accountID string) ([]domain.WishlistItem, error)
}

// BalanceSource reports the ledger balance of an account at a point in time.
type BalanceSource interface {
	CurrentBalance(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error)
}

// Service fetches an account's records and runs Generate over them.
type Service struct {
	records  RecordSource
	balances BalanceSource
	clock    clock.Clock
	log      zerolog.Logger
}

// NewService creates a forecast service.
func NewService(records RecordSource, balances BalanceSource, clk clock.Clock, log zerolog.Logger) *Service {
	return &Service{
		records:  records,
		balances: balances,
		clock:    clk,
		log:      log,
	}
}

// Forecast projects accountID over [from, to] as of the service clock.
func (s *Service) Forecast(ctx context.Context, accountID string, from, to time.Time) (*Forecast, error) {
	w := Window{From: from, To: to, Now: s.clock.Now()}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("Forecast: %w", err)
	}

	log := logger.WithForecast(s.log, accountID, from, to)

	records, err := s.LoadRecords(ctx, accountID, to)
	if err != nil {
		return nil, err
	}

	balance, err := s.balances.CurrentBalance(ctx, accountID, w.Now)
	if err != nil {
		return nil, fmt.Errorf("Forecast: current balance: %w", err)
	}

	fc := Generate(Input{
		AccountID:      accountID,
		Window:         w,
		CurrentBalance: balance,
		Records:        records,
	})

	for _, f := range fc.Failures {
		log.Warn().
			Err(f.Err).
			Str("kind", string(f.Kind)).
			Str("record_id", f.RecordID).
			Msg("Record could not be projected")
	}
	log.Info().
		Int("transactions", len(fc.Transactions)).
		Int("failures", len(fc.Failures)).
		Str("starting_balance", balance.String()).
		Msg("Forecast generated")

	return fc, nil
}

// LoadRecords fetches every obligation of accountID relevant up to until.
func (s *Service) LoadRecords(ctx context.Context, accountID string, until time.Time) (domain.Records, error) {
	var (
		recs domain.Records
		err  error
	)
	if recs.Expenses, err = s.records.ListExpenses(ctx, accountID, until); err != nil {
		return domain.Records{}, fmt.Errorf("Forecast: list expenses: %w", err)
	}
	if recs.Incomes, err = s.records.ListIncomes(ctx, accountID, until); err != nil {
		return domain.Records{}, fmt.Errorf("Forecast: list incomes: %w", err)
	}
	if recs.Loans, err = s.records.ListLoans(ctx, accountID, until); err != nil {
		return domain.Records{}, fmt.Errorf("Forecast: list loans: %w", err)
	}
	if recs.Transfers, err = s.records.ListTransfers(ctx, accountID, until); err != nil {
		return domain.Records{}, fmt.Errorf("Forecast: list transfers: %w", err)
	}
	if recs.Payrolls, err = s.records.ListPayrolls(ctx, accountID, until); err != nil {
		return domain.Records{}, fmt.Errorf("Forecast: list payrolls: %w", err)
	}
	if recs.Commutes, err = s.records.ListCommuteSchedules(ctx, accountID, until); err != nil {
		return domain.Records{}, fmt.Errorf("Forecast: list commute schedules: %w", err)
	}
	if recs.Wishlist, err = s.records.ListWishlistItems(ctx, accountID); err != nil {
		return domain.Records{}, fmt.Errorf("Forecast: list wishlist items: %w", err)
	}
	return recs, nil
}
