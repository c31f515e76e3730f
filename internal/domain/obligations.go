package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a recurring outflow, e.g. rent or a subscription.
type Expense struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	SubsidyRate decimal.Decimal `json:"subsidy_rate"`
	BeginDate   time.Time       `json:"begin_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Frequency   FrequencyRule   `json:"frequency"`
}

// Income is a recurring inflow that is not tied to a payroll record.
type Income struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	BeginDate   time.Time       `json:"begin_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Frequency   FrequencyRule   `json:"frequency"`
}

// Loan is an amortized debt repaid on Frequency. Interest accrues at
// InterestRate per year, compounded on InterestFrequencyType.
type Loan struct {
	ID                    string          `json:"id"`
	AccountID             string          `json:"account_id"`
	Title                 string          `json:"title"`
	Description           string          `json:"description,omitempty"`
	Principal             decimal.Decimal `json:"principal"`
	PlanPaymentAmount     decimal.Decimal `json:"plan_payment_amount"`
	InterestRate          decimal.Decimal `json:"interest_rate"`
	InterestFrequencyType FrequencyType   `json:"interest_frequency_type"`
	TaxRate               decimal.Decimal `json:"tax_rate"`
	SubsidyRate           decimal.Decimal `json:"subsidy_rate"`
	BeginDate             time.Time       `json:"begin_date"`
	EndDate               *time.Time      `json:"end_date,omitempty"`
	Frequency             FrequencyRule   `json:"frequency"`
}

// Transfer moves money between two accounts. The same record is an outflow
// for the source account and an inflow for the destination account.
type Transfer struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	TaxRate              decimal.Decimal `json:"tax_rate"`
	SubsidyRate          decimal.Decimal `json:"subsidy_rate"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	BeginDate            time.Time       `json:"begin_date"`
	EndDate              *time.Time      `json:"end_date,omitempty"`
	Frequency            FrequencyRule   `json:"frequency"`
}

// Payroll is a single pay period. It is paid out on EndDate.
type Payroll struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	EmployerName string          `json:"employer_name"`
	GrossPay     decimal.Decimal `json:"gross_pay"`
	NetPay       decimal.Decimal `json:"net_pay"`
	BeginDate    time.Time       `json:"begin_date"`
	EndDate      time.Time       `json:"end_date"`
}

// CommuteSchedule is a weekly commute: one fare every DayOfWeek at StartTime.
type CommuteSchedule struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Title       string          `json:"title"`
	FareAmount  decimal.Decimal `json:"fare_amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	SubsidyRate decimal.Decimal `json:"subsidy_rate"`
	DayOfWeek   time.Weekday    `json:"day_of_week"`
	StartTime   ClockTime       `json:"start_time"`
	BeginDate   time.Time       `json:"begin_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
}

// WishlistItem is a one-off purchase made as soon as the account can
// sustain it. Lower Priority values are considered first.
type WishlistItem struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	DateAvailable *time.Time      `json:"date_available,omitempty"`
	Priority      int             `json:"priority"`
}

// Records groups every obligation that applies to one account.
type Records struct {
	Expenses  []Expense         `json:"expenses"`
	Incomes   []Income          `json:"incomes"`
	Loans     []Loan            `json:"loans"`
	Transfers []Transfer        `json:"transfers"`
	Payrolls  []Payroll         `json:"payrolls"`
	Commutes  []CommuteSchedule `json:"commutes"`
	Wishlist  []WishlistItem    `json:"wishlist"`
}
