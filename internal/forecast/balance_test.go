package forecast

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

func TestProjectBalances_ForwardAndBackward(t *testing.T) {
	now := day(2023, 6, 1)
	txs := []domain.GeneratedTransaction{
		inflowTx("future-2", day(2023, 8, 1), "-50"),
		inflowTx("past-1", day(2023, 4, 1), "100"),
		inflowTx("future-1", day(2023, 7, 1), "200"),
		inflowTx("past-2", day(2023, 5, 1), "-30"),
		inflowTx("at-now", now, "10"),
	}

	out := ProjectBalances(txs, dec("1000"), now)

	require.Len(t, out, 5)
	wantOrder := []string{"past-1", "past-2", "at-now", "future-1", "future-2"}
	wantBalance := []string{"1030", "1000", "1010", "1210", "1160"}
	for i, tx := range out {
		assert.Equal(t, wantOrder[i], tx.ID)
		require.True(t, tx.Balance.Valid)
		assertDecimal(t, wantBalance[i], tx.Balance.Decimal)
	}

	for _, tx := range txs {
		assert.False(t, tx.Balance.Valid, "input must stay untouched")
	}
}

func TestProjectBalances_StableOnEqualDates(t *testing.T) {
	d := day(2023, 7, 1)
	txs := []domain.GeneratedTransaction{
		inflowTx("a", d, "1"),
		inflowTx("b", d, "2"),
		inflowTx("c", d, "3"),
	}
	out := ProjectBalances(txs, decimal.Zero, day(2023, 1, 1))
	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestProjectBalances_Empty(t *testing.T) {
	assert.Empty(t, ProjectBalances(nil, dec("10"), day(2023, 1, 1)))
}

// For any synthetic future timeline, each balance is the previous balance
// plus the transaction total.
func TestProjectBalances_ConsistencyProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	now := day(2023, 1, 1)

	for run := 0; run < 50; run++ {
		n := 1 + rng.IntN(40)
		txs := make([]domain.GeneratedTransaction, n)
		for i := range txs {
			date := now.Add(time.Duration(rng.IntN(24*365)) * time.Hour)
			total := decimal.New(rng.Int64N(200_000)-100_000, -2)
			txs[i] = domain.GeneratedTransaction{ID: string(rune('a' + i%26)), Date: date, TotalAmount: total}
		}
		start := decimal.New(rng.Int64N(1_000_000), -2)

		out := ProjectBalances(txs, start, now)

		assert.True(t, out[0].Balance.Decimal.Equal(start.Add(out[0].TotalAmount)))
		for i := 1; i < len(out); i++ {
			a, b := out[i-1], out[i]
			assert.False(t, b.Date.Before(a.Date))
			assert.True(t, b.Balance.Decimal.Equal(a.Balance.Decimal.Add(b.TotalAmount)),
				"run %d index %d", run, i)
		}
	}
}
