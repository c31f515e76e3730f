package forecast

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

var (
	decimalOne = decimal.NewFromInt(1)
)

// outflow signs a record amount as money leaving the account. Subsidy is
// taken off first, then tax is applied on what remains.
func outflow(amount, subsidyRate, taxRate decimal.Decimal) (signed, total decimal.Decimal) {
	signed = amount.Neg()
	total = amount.
		Mul(decimalOne.Sub(subsidyRate)).
		Mul(decimalOne.Add(taxRate)).
		Neg()
	return signed, total
}

// inflow signs a record amount as money entering the account. Inflows carry
// no subsidy.
func inflow(amount, taxRate decimal.Decimal) (signed, total decimal.Decimal) {
	return amount, amount.Mul(decimalOne.Add(taxRate))
}

// source describes the record an occurrence is generated from.
type source struct {
	kind        domain.SourceKind
	id          string
	title       string
	description string
}

func (s source) transaction(date time.Time, amount, taxRate, subsidyRate, total decimal.Decimal) domain.GeneratedTransaction {
	return domain.GeneratedTransaction{
		ID:          domain.TransactionID(s.kind, s.id, date),
		SourceKind:  s.kind,
		SourceID:    s.id,
		Title:       s.title,
		Description: s.description,
		Date:        date,
		Amount:      amount,
		TaxRate:     taxRate,
		SubsidyRate: subsidyRate,
		TotalAmount: total,
	}
}
