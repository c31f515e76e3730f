package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func dates(txs []domain.GeneratedTransaction) []time.Time {
	out := make([]time.Time, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Date)
	}
	return out
}

func monthly() domain.FrequencyRule {
	return domain.FrequencyRule{Type: domain.FrequencyMonthly}
}

// inflowTx builds a bare income transaction for timeline tests.
func inflowTx(id string, date time.Time, total string) domain.GeneratedTransaction {
	return domain.GeneratedTransaction{
		ID:          id,
		SourceKind:  domain.SourceIncome,
		SourceID:    id,
		Date:        date,
		Amount:      dec(total),
		TotalAmount: dec(total),
	}
}
