package forecast

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// SortTimeline orders transactions by date in place. Transactions on the
// same instant keep their relative order.
func SortTimeline(txs []domain.GeneratedTransaction) {
	slices.SortStableFunc(txs, func(a, b domain.GeneratedTransaction) int {
		return a.Date.Compare(b.Date)
	})
}

// ProjectBalances returns a date-sorted copy of txs with Balance set on every
// transaction. The running balance starts at current, anchored at now: future
// transactions are walked forward adding their totals, past transactions are
// walked backward undoing them.
func ProjectBalances(txs []domain.GeneratedTransaction, current decimal.Decimal, now time.Time) []domain.GeneratedTransaction {
	out := slices.Clone(txs)
	SortTimeline(out)

	split := slices.IndexFunc(out, func(tx domain.GeneratedTransaction) bool {
		return !tx.Date.Before(now)
	})
	if split < 0 {
		split = len(out)
	}

	running := current
	for i := split - 1; i >= 0; i-- {
		out[i].Balance = decimal.NewNullDecimal(running)
		running = running.Sub(out[i].TotalAmount)
	}

	running = current
	for i := split; i < len(out); i++ {
		running = running.Add(out[i].TotalAmount)
		out[i].Balance = decimal.NewNullDecimal(running)
	}
	return out
}
