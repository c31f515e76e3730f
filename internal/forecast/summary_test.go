package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

func balanced(date time.Time, total, balance string) domain.GeneratedTransaction {
	return domain.GeneratedTransaction{
		Date:        date,
		TotalAmount: dec(total),
		Balance:     decimal.NewNullDecimal(dec(balance)),
	}
}

func TestForecast_Summaries(t *testing.T) {
	fc := &Forecast{
		StartingBalance: dec("100"),
		Transactions: []domain.GeneratedTransaction{
			balanced(day(2024, 1, 1), "-80", "20"),
			balanced(day(2024, 1, 5), "-30", "-10"),
			balanced(day(2024, 1, 10), "200", "190"),
			balanced(day(2024, 1, 12), "-200", "-10"),
		},
	}

	assertDecimal(t, "-10", fc.EndingBalance())

	low, at, ok := fc.LowestBalance()
	assert.True(t, ok)
	assertDecimal(t, "-10", low)
	assert.Equal(t, day(2024, 1, 5), at, "first date the low is reached")

	in, out := fc.Totals()
	assertDecimal(t, "200", in)
	assertDecimal(t, "310", out)
}

func TestForecast_SummariesEmpty(t *testing.T) {
	fc := &Forecast{StartingBalance: dec("42")}

	assertDecimal(t, "42", fc.EndingBalance())
	_, _, ok := fc.LowestBalance()
	assert.False(t, ok)
	in, out := fc.Totals()
	assert.True(t, in.IsZero())
	assert.True(t, out.IsZero())
}
