package forecast

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// AffordableFrom scans a balance-projected timeline and returns the date of
// the earliest transaction from which every balance, through the end of the
// timeline, is at least amount. It returns false when no such point exists.
func AffordableFrom(timeline []domain.GeneratedTransaction, amount decimal.Decimal) (time.Time, bool) {
	var (
		candidate time.Time
		found     bool
	)
	for _, tx := range timeline {
		if tx.Balance.Valid && tx.Balance.Decimal.GreaterThanOrEqual(amount) {
			if !found {
				candidate = tx.Date
				found = true
			}
			continue
		}
		found = false
	}
	return candidate, found
}

// ApplyWishlist buys wishlist items as soon as the projected balance can
// sustain them. Items are considered by ascending Priority; each purchase is
// added to the timeline before the next item is evaluated. Items that never
// become affordable, or only after the window ends, are left out.
func ApplyWishlist(items []domain.WishlistItem, res Result, current decimal.Decimal, w Window) Result {
	out := Result{
		Included: slices.Clone(res.Included),
		Skipped:  slices.Clone(res.Skipped),
	}
	if len(items) == 0 {
		return out
	}

	ordered := slices.Clone(items)
	slices.SortStableFunc(ordered, func(a, b domain.WishlistItem) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	for _, item := range ordered {
		timeline := ProjectBalances(slices.Concat(out.Included, out.Skipped), current, w.Now)
		date, ok := AffordableFrom(timeline, item.Amount)
		if !ok {
			continue
		}
		if item.DateAvailable != nil && item.DateAvailable.After(date) {
			date = *item.DateAvailable
		}
		if date.After(w.To) {
			continue
		}

		src := source{kind: domain.SourceWishlist, id: item.ID, title: item.Title, description: item.Description}
		amount, total := outflow(item.Amount, decimal.Zero, item.TaxRate)
		out.add(w, src.transaction(date, amount, item.TaxRate, decimal.Zero, total))
	}
	return out
}
