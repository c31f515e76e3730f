package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// FrequencyColumns are the recurrence columns shared by every recurring
// obligation table.
type FrequencyColumns struct {
	FrequencyType string             `bigquery:"frequency_type"` // REQUIRED
	StepVariable  bigquery.NullInt64 `bigquery:"step_variable"`  // NULLABLE
	DayOfWeek     bigquery.NullInt64 `bigquery:"day_of_week"`    // NULLABLE 0-6
	WeekOfMonth   bigquery.NullInt64 `bigquery:"week_of_month"`  // NULLABLE 0-4
	MonthOfYear   bigquery.NullInt64 `bigquery:"month_of_year"`  // NULLABLE 0-11
}

type ExpenseRow struct {
	ExpenseID   string              `bigquery:"expense_id"` // REQUIRED
	AccountID   string              `bigquery:"account_id"` // REQUIRED
	Title       string              `bigquery:"title"`
	Description bigquery.NullString `bigquery:"description"`

	Amount      *big.Rat `bigquery:"amount"`       // REQUIRED NUMERIC
	TaxRate     *big.Rat `bigquery:"tax_rate"`     // NULLABLE NUMERIC
	SubsidyRate *big.Rat `bigquery:"subsidy_rate"` // NULLABLE NUMERIC

	BeginTS time.Time              `bigquery:"begin_ts"` // REQUIRED
	EndTS   bigquery.NullTimestamp `bigquery:"end_ts"`   // NULLABLE

	FrequencyColumns
}

type IncomeRow struct {
	IncomeID    string              `bigquery:"income_id"`
	AccountID   string              `bigquery:"account_id"`
	Title       string              `bigquery:"title"`
	Description bigquery.NullString `bigquery:"description"`

	Amount  *big.Rat `bigquery:"amount"`
	TaxRate *big.Rat `bigquery:"tax_rate"`

	BeginTS time.Time              `bigquery:"begin_ts"`
	EndTS   bigquery.NullTimestamp `bigquery:"end_ts"`

	FrequencyColumns
}

type LoanRow struct {
	LoanID      string              `bigquery:"loan_id"`
	AccountID   string              `bigquery:"account_id"`
	Title       string              `bigquery:"title"`
	Description bigquery.NullString `bigquery:"description"`

	Principal             *big.Rat `bigquery:"principal"`               // REQUIRED NUMERIC
	PlanPaymentAmount     *big.Rat `bigquery:"plan_payment_amount"`     // REQUIRED NUMERIC
	InterestRate          *big.Rat `bigquery:"interest_rate"`           // NULLABLE NUMERIC, annual
	InterestFrequencyType string   `bigquery:"interest_frequency_type"` // REQUIRED
	TaxRate               *big.Rat `bigquery:"tax_rate"`
	SubsidyRate           *big.Rat `bigquery:"subsidy_rate"`

	BeginTS time.Time              `bigquery:"begin_ts"`
	EndTS   bigquery.NullTimestamp `bigquery:"end_ts"`

	FrequencyColumns
}

type TransferRow struct {
	TransferID  string              `bigquery:"transfer_id"`
	Title       string              `bigquery:"title"`
	Description bigquery.NullString `bigquery:"description"`

	Amount      *big.Rat `bigquery:"amount"`
	TaxRate     *big.Rat `bigquery:"tax_rate"`
	SubsidyRate *big.Rat `bigquery:"subsidy_rate"`

	SourceAccountID      string `bigquery:"source_account_id"`
	DestinationAccountID string `bigquery:"destination_account_id"`

	BeginTS time.Time              `bigquery:"begin_ts"`
	EndTS   bigquery.NullTimestamp `bigquery:"end_ts"`

	FrequencyColumns
}

type PayrollRow struct {
	PayrollID    string     `bigquery:"payroll_id"`
	AccountID    string     `bigquery:"account_id"`
	EmployerName string     `bigquery:"employer_name"`
	GrossPay     *big.Rat   `bigquery:"gross_pay"`
	NetPay       *big.Rat   `bigquery:"net_pay"`
	BeginDate    civil.Date `bigquery:"begin_date"` // REQUIRED DATE
	EndDate      civil.Date `bigquery:"end_date"`   // REQUIRED DATE, pay day
}

type CommuteScheduleRow struct {
	CommuteID   string     `bigquery:"commute_id"`
	AccountID   string     `bigquery:"account_id"`
	Title       string     `bigquery:"title"`
	FareAmount  *big.Rat   `bigquery:"fare_amount"`
	TaxRate     *big.Rat   `bigquery:"tax_rate"`
	SubsidyRate *big.Rat   `bigquery:"subsidy_rate"`
	DayOfWeek   int64      `bigquery:"day_of_week"` // 0-6
	StartTime   civil.Time `bigquery:"start_time"`  // TIME

	BeginDate civil.Date        `bigquery:"begin_date"`
	EndDate   bigquery.NullDate `bigquery:"end_date"`
}

type WishlistItemRow struct {
	WishlistItemID string              `bigquery:"wishlist_item_id"`
	AccountID      string              `bigquery:"account_id"`
	Title          string              `bigquery:"title"`
	Description    bigquery.NullString `bigquery:"description"`
	Amount         *big.Rat            `bigquery:"amount"`
	TaxRate        *big.Rat            `bigquery:"tax_rate"`
	DateAvailable  bigquery.NullDate   `bigquery:"date_available"`
	Priority       bigquery.NullInt64  `bigquery:"priority"`
}

type AccountBalanceRow struct {
	AccountID string    `bigquery:"account_id"`
	Balance   *big.Rat  `bigquery:"balance"` // REQUIRED NUMERIC
	AsOfTS    time.Time `bigquery:"as_of_ts"`
}

type ProjectedTransactionRow struct {
	TransactionID string    `bigquery:"transaction_id"` // REQUIRED, deterministic
	AccountID     string    `bigquery:"account_id"`
	SourceKind    string    `bigquery:"source_kind"`
	SourceID      string    `bigquery:"source_id"`
	Title         string    `bigquery:"title"`
	Description   string    `bigquery:"description"`
	TransactionTS time.Time `bigquery:"transaction_ts"`
	Amount        *big.Rat  `bigquery:"amount"`
	TaxRate       *big.Rat  `bigquery:"tax_rate"`
	SubsidyRate   *big.Rat  `bigquery:"subsidy_rate"`
	TotalAmount   *big.Rat  `bigquery:"total_amount"`
	Balance       *big.Rat  `bigquery:"balance"` // NULLABLE NUMERIC

	WindowFrom civil.Date `bigquery:"window_from"`
	WindowTo   civil.Date `bigquery:"window_to"`
	CreatedTS  time.Time  `bigquery:"created_ts"`
}
