package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceKind identifies the obligation type a projected transaction came from.
type SourceKind string

const (
	SourceExpense  SourceKind = "expense"
	SourceIncome   SourceKind = "income"
	SourceLoan     SourceKind = "loan"
	SourceTransfer SourceKind = "transfer"
	SourcePayroll  SourceKind = "payroll"
	SourceCommute  SourceKind = "commute"
	SourceWishlist SourceKind = "wishlist"
)

// transactionNamespace seeds the name-based UUIDs of projected transactions.
var transactionNamespace = uuid.MustParse("6f0b6a4e-5d2c-4b8e-9a53-2f1f0c7d9e41")

// GeneratedTransaction is one projected occurrence of an obligation.
// Amount is negative for money OUT and positive for money IN; TotalAmount is
// Amount with tax and subsidy applied. Balance is only valid once the
// forecast has been balance-projected.
type GeneratedTransaction struct {
	ID          string              `json:"id"`
	SourceKind  SourceKind          `json:"source_kind"`
	SourceID    string              `json:"source_id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Date        time.Time           `json:"date"`
	Amount      decimal.Decimal     `json:"amount"`
	TaxRate     decimal.Decimal     `json:"tax_rate"`
	SubsidyRate decimal.Decimal     `json:"subsidy_rate"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Balance     decimal.NullDecimal `json:"balance"`
}

// TransactionID derives a stable id for an occurrence, so the same inputs
// always produce the same ids.
func TransactionID(kind SourceKind, sourceID string, date time.Time) string {
	name := string(kind) + "|" + sourceID + "|" + date.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(transactionNamespace, []byte(name)).String()
}
