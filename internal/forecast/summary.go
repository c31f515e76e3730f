package forecast

import (
	"time"

	"github.com/shopspring/decimal"
)

// EndingBalance is the balance after the last transaction in the window, or
// the starting balance when the window is empty.
func (f *Forecast) EndingBalance() decimal.Decimal {
	if n := len(f.Transactions); n > 0 && f.Transactions[n-1].Balance.Valid {
		return f.Transactions[n-1].Balance.Decimal
	}
	return f.StartingBalance
}

// LowestBalance returns the smallest balance reached in the window and the
// date it is first reached. ok is false for an empty window.
func (f *Forecast) LowestBalance() (low decimal.Decimal, at time.Time, ok bool) {
	for _, tx := range f.Transactions {
		if !tx.Balance.Valid {
			continue
		}
		if !ok || tx.Balance.Decimal.LessThan(low) {
			low, at, ok = tx.Balance.Decimal, tx.Date, true
		}
	}
	return low, at, ok
}

// Totals sums the money in and out over the window using TotalAmount.
// out is returned as a positive number.
func (f *Forecast) Totals() (in, out decimal.Decimal) {
	for _, tx := range f.Transactions {
		if tx.TotalAmount.IsNegative() {
			out = out.Sub(tx.TotalAmount)
		} else {
			in = in.Add(tx.TotalAmount)
		}
	}
	return in, out
}
