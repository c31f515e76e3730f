package postgres

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// FrequencyColumns are the recurrence columns shared by the recurring tables.
type FrequencyColumns struct {
	FrequencyType string `db:"frequency_type"`
	StepVariable  *int   `db:"step_variable"`
	DayOfWeek     *int   `db:"day_of_week"`
	WeekOfMonth   *int   `db:"week_of_month"`
	MonthOfYear   *int   `db:"month_of_year"`
}

func (f FrequencyColumns) toDomain() domain.FrequencyRule {
	return domain.FrequencyRule{
		Type:         domain.FrequencyType(f.FrequencyType),
		StepVariable: f.StepVariable,
		DayOfWeek:    f.DayOfWeek,
		WeekOfMonth:  f.WeekOfMonth,
		MonthOfYear:  f.MonthOfYear,
	}
}

type expenseRow struct {
	ID          string          `db:"expense_id"`
	AccountID   string          `db:"account_id"`
	Title       string          `db:"title"`
	Description *string         `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	TaxRate     decimal.Decimal `db:"tax_rate"`
	SubsidyRate decimal.Decimal `db:"subsidy_rate"`
	BeginTS     time.Time       `db:"begin_ts"`
	EndTS       *time.Time      `db:"end_ts"`
	FrequencyColumns
}

func (r expenseRow) toDomain() (domain.Expense, error) {
	return domain.Expense{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Title:       r.Title,
		Description: deref(r.Description),
		Amount:      r.Amount,
		TaxRate:     r.TaxRate,
		SubsidyRate: r.SubsidyRate,
		BeginDate:   r.BeginTS,
		EndDate:     r.EndTS,
		Frequency:   r.FrequencyColumns.toDomain(),
	}, nil
}

type incomeRow struct {
	ID          string          `db:"income_id"`
	AccountID   string          `db:"account_id"`
	Title       string          `db:"title"`
	Description *string         `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	TaxRate     decimal.Decimal `db:"tax_rate"`
	BeginTS     time.Time       `db:"begin_ts"`
	EndTS       *time.Time      `db:"end_ts"`
	FrequencyColumns
}

func (r incomeRow) toDomain() (domain.Income, error) {
	return domain.Income{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Title:       r.Title,
		Description: deref(r.Description),
		Amount:      r.Amount,
		TaxRate:     r.TaxRate,
		BeginDate:   r.BeginTS,
		EndDate:     r.EndTS,
		Frequency:   r.FrequencyColumns.toDomain(),
	}, nil
}

type loanRow struct {
	ID                    string          `db:"loan_id"`
	AccountID             string          `db:"account_id"`
	Title                 string          `db:"title"`
	Description           *string         `db:"description"`
	Principal             decimal.Decimal `db:"principal"`
	PlanPaymentAmount     decimal.Decimal `db:"plan_payment_amount"`
	InterestRate          decimal.Decimal `db:"interest_rate"`
	InterestFrequencyType string          `db:"interest_frequency_type"`
	TaxRate               decimal.Decimal `db:"tax_rate"`
	SubsidyRate           decimal.Decimal `db:"subsidy_rate"`
	BeginTS               time.Time       `db:"begin_ts"`
	EndTS                 *time.Time      `db:"end_ts"`
	FrequencyColumns
}

func (r loanRow) toDomain() (domain.Loan, error) {
	return domain.Loan{
		ID:                    r.ID,
		AccountID:             r.AccountID,
		Title:                 r.Title,
		Description:           deref(r.Description),
		Principal:             r.Principal,
		PlanPaymentAmount:     r.PlanPaymentAmount,
		InterestRate:          r.InterestRate,
		InterestFrequencyType: domain.FrequencyType(r.InterestFrequencyType),
		TaxRate:               r.TaxRate,
		SubsidyRate:           r.SubsidyRate,
		BeginDate:             r.BeginTS,
		EndDate:               r.EndTS,
		Frequency:             r.FrequencyColumns.toDomain(),
	}, nil
}

type transferRow struct {
	ID                   string          `db:"transfer_id"`
	Title                string          `db:"title"`
	Description          *string         `db:"description"`
	Amount               decimal.Decimal `db:"amount"`
	TaxRate              decimal.Decimal `db:"tax_rate"`
	SubsidyRate          decimal.Decimal `db:"subsidy_rate"`
	SourceAccountID      string          `db:"source_account_id"`
	DestinationAccountID string          `db:"destination_account_id"`
	BeginTS              time.Time       `db:"begin_ts"`
	EndTS                *time.Time      `db:"end_ts"`
	FrequencyColumns
}

func (r transferRow) toDomain() (domain.Transfer, error) {
	return domain.Transfer{
		ID:                   r.ID,
		Title:                r.Title,
		Description:          deref(r.Description),
		Amount:               r.Amount,
		TaxRate:              r.TaxRate,
		SubsidyRate:          r.SubsidyRate,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		BeginDate:            r.BeginTS,
		EndDate:              r.EndTS,
		Frequency:            r.FrequencyColumns.toDomain(),
	}, nil
}

type payrollRow struct {
	ID           string          `db:"payroll_id"`
	AccountID    string          `db:"account_id"`
	EmployerName string          `db:"employer_name"`
	GrossPay     decimal.Decimal `db:"gross_pay"`
	NetPay       decimal.Decimal `db:"net_pay"`
	BeginDate    time.Time       `db:"begin_date"`
	EndDate      time.Time       `db:"end_date"`
}

func (r payrollRow) toDomain() (domain.Payroll, error) {
	return domain.Payroll{
		ID:           r.ID,
		AccountID:    r.AccountID,
		EmployerName: r.EmployerName,
		GrossPay:     r.GrossPay,
		NetPay:       r.NetPay,
		BeginDate:    r.BeginDate,
		EndDate:      r.EndDate,
	}, nil
}

// commuteRow reads start_time as text ("HH:MM:SS").
type commuteRow struct {
	ID          string          `db:"commute_id"`
	AccountID   string          `db:"account_id"`
	Title       string          `db:"title"`
	FareAmount  decimal.Decimal `db:"fare_amount"`
	TaxRate     decimal.Decimal `db:"tax_rate"`
	SubsidyRate decimal.Decimal `db:"subsidy_rate"`
	DayOfWeek   int             `db:"day_of_week"`
	StartTime   string          `db:"start_time"`
	BeginDate   time.Time       `db:"begin_date"`
	EndDate     *time.Time      `db:"end_date"`
}

func (r commuteRow) toDomain() (domain.CommuteSchedule, error) {
	start, err := domain.ParseClockTime(r.StartTime)
	if err != nil {
		return domain.CommuteSchedule{}, fmt.Errorf("commute %s: %w", r.ID, err)
	}
	return domain.CommuteSchedule{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Title:       r.Title,
		FareAmount:  r.FareAmount,
		TaxRate:     r.TaxRate,
		SubsidyRate: r.SubsidyRate,
		DayOfWeek:   time.Weekday(r.DayOfWeek),
		StartTime:   start,
		BeginDate:   r.BeginDate,
		EndDate:     r.EndDate,
	}, nil
}

type wishlistRow struct {
	ID            string          `db:"wishlist_item_id"`
	AccountID     string          `db:"account_id"`
	Title         string          `db:"title"`
	Description   *string         `db:"description"`
	Amount        decimal.Decimal `db:"amount"`
	TaxRate       decimal.Decimal `db:"tax_rate"`
	DateAvailable *time.Time      `db:"date_available"`
	Priority      int             `db:"priority"`
}

func (r wishlistRow) toDomain() (domain.WishlistItem, error) {
	return domain.WishlistItem{
		ID:            r.ID,
		AccountID:     r.AccountID,
		Title:         r.Title,
		Description:   deref(r.Description),
		Amount:        r.Amount,
		TaxRate:       r.TaxRate,
		DateAvailable: r.DateAvailable,
		Priority:      r.Priority,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
