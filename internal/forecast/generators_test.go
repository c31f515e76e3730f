package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/recurrence"
)

func TestWindow_Classify(t *testing.T) {
	w := Window{From: day(2023, 3, 1), To: day(2023, 6, 30), Now: day(2023, 2, 10)}

	tests := []struct {
		date time.Time
		want Bucket
	}{
		{day(2023, 1, 15), Discarded},
		{day(2023, 2, 9), Discarded},
		{day(2023, 2, 10), Skipped},
		{day(2023, 2, 28), Skipped},
		{day(2023, 3, 1), Included},
		{day(2023, 6, 30), Included},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format(time.DateOnly), func(t *testing.T) {
			assert.Equal(t, tt.want, w.Classify(tt.date))
		})
	}
}

func TestWindow_Validate(t *testing.T) {
	assert.NoError(t, Window{From: day(2023, 1, 1), To: day(2023, 1, 1)}.Validate())
	assert.ErrorIs(t, Window{From: day(2023, 2, 1), To: day(2023, 1, 1)}.Validate(), ErrInvalidWindow)
}

func TestGenerateExpense(t *testing.T) {
	e := domain.Expense{
		ID:          "rent",
		Title:       "Rent",
		Amount:      dec("100"),
		TaxRate:     dec("0.1"),
		SubsidyRate: dec("0.5"),
		BeginDate:   day(2023, 1, 15),
		Frequency:   monthly(),
	}
	w := Window{From: day(2023, 3, 1), To: day(2023, 5, 31), Now: day(2023, 2, 10)}

	res, err := GenerateExpense(e, w)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(2023, 2, 15)}, dates(res.Skipped))
	assert.Equal(t, []time.Time{day(2023, 3, 15), day(2023, 4, 15), day(2023, 5, 15)}, dates(res.Included))

	tx := res.Included[0]
	assert.Equal(t, domain.SourceExpense, tx.SourceKind)
	assert.Equal(t, "rent", tx.SourceID)
	assertDecimal(t, "-100", tx.Amount)
	assertDecimal(t, "-55", tx.TotalAmount)
	assert.False(t, tx.Balance.Valid)
}

func TestGenerateExpense_StopsAtEndDate(t *testing.T) {
	end := day(2023, 4, 1)
	e := domain.Expense{
		ID:        "gym",
		Amount:    dec("30"),
		BeginDate: day(2023, 1, 1),
		EndDate:   &end,
		Frequency: monthly(),
	}
	w := Window{From: day(2023, 1, 1), To: day(2023, 12, 31), Now: day(2023, 1, 1)}

	res, err := GenerateExpense(e, w)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2023, 1, 1), day(2023, 2, 1), day(2023, 3, 1), day(2023, 4, 1)}, dates(res.Included))
}

func TestGenerateExpense_InvalidFrequency(t *testing.T) {
	e := domain.Expense{
		ID:        "bad",
		Amount:    dec("10"),
		BeginDate: day(2023, 1, 1),
		Frequency: domain.FrequencyRule{Type: "hourly"},
	}
	_, err := GenerateExpense(e, Window{From: day(2023, 1, 1), To: day(2023, 2, 1), Now: day(2023, 1, 1)})
	assert.ErrorIs(t, err, recurrence.ErrInvalidFrequencyType)
}

func TestGenerateIncome(t *testing.T) {
	in := domain.Income{
		ID:        "salary",
		Amount:    dec("1000"),
		TaxRate:   dec("0.1"),
		BeginDate: day(2023, 1, 31),
		Frequency: monthly(),
	}
	w := Window{From: day(2023, 1, 1), To: day(2023, 3, 31), Now: day(2023, 1, 1)}

	res, err := GenerateIncome(in, w)
	require.NoError(t, err)
	require.Len(t, res.Included, 3)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, day(2023, 2, 28), res.Included[1].Date)
	for _, tx := range res.Included {
		assertDecimal(t, "1000", tx.Amount)
		assertDecimal(t, "1100", tx.TotalAmount)
	}
}

func TestGenerateTransfer_Perspective(t *testing.T) {
	tr := domain.Transfer{
		ID:                   "savings",
		Amount:               dec("250"),
		SourceAccountID:      "checking",
		DestinationAccountID: "savings-acc",
		BeginDate:            day(2023, 1, 1),
		Frequency:            monthly(),
	}
	w := Window{From: day(2023, 1, 1), To: day(2023, 2, 28), Now: day(2023, 1, 1)}

	tests := []struct {
		account   string
		wantTotal string
	}{
		{account: "savings-acc", wantTotal: "250"},
		{account: "checking", wantTotal: "-250"},
		{account: "unrelated", wantTotal: "-250"},
	}
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			res, err := GenerateTransfer(tr, tt.account, w)
			require.NoError(t, err)
			require.Len(t, res.Included, 2)
			for _, tx := range res.Included {
				assertDecimal(t, tt.wantTotal, tx.Amount)
				assertDecimal(t, tt.wantTotal, tx.TotalAmount)
			}
		})
	}
}

func TestGeneratePayroll(t *testing.T) {
	from := day(2023, 7, 1)
	p := domain.Payroll{
		ID:           "pay-july",
		EmployerName: "Acme",
		GrossPay:     dec("3000"),
		NetPay:       dec("2000"),
		BeginDate:    from,
		EndDate:      from.AddDate(0, 0, 31),
	}
	w := Window{From: from, To: day(2023, 12, 31), Now: day(2023, 6, 15)}

	res, err := GeneratePayroll(p, w)
	require.NoError(t, err)
	require.Len(t, res.Included, 1)
	assert.Empty(t, res.Skipped)

	tx := res.Included[0]
	assert.Equal(t, time.Date(2023, 8, 1, 11, 30, 0, 0, time.UTC), tx.Date)
	assertDecimal(t, "3000", tx.Amount)
	assertDecimal(t, "2000", tx.TotalAmount)
	assert.Equal(t, "0.3333", tx.TaxRate.StringFixed(4))
}

func TestGeneratePayroll_Edges(t *testing.T) {
	w := Window{From: day(2023, 7, 1), To: day(2023, 7, 31), Now: day(2023, 6, 1)}

	tests := []struct {
		name         string
		payroll      domain.Payroll
		wantIncluded int
		wantSkipped  int
	}{
		{
			name:    "after window end",
			payroll: domain.Payroll{ID: "late", GrossPay: dec("100"), NetPay: dec("80"), EndDate: day(2023, 8, 1)},
		},
		{
			name:    "before now",
			payroll: domain.Payroll{ID: "past", GrossPay: dec("100"), NetPay: dec("80"), EndDate: day(2023, 5, 31)},
		},
		{
			name:        "between now and window start",
			payroll:     domain.Payroll{ID: "june", GrossPay: dec("100"), NetPay: dec("80"), EndDate: day(2023, 6, 30)},
			wantSkipped: 1,
		},
		{
			name:         "zero gross",
			payroll:      domain.Payroll{ID: "zero", EndDate: day(2023, 7, 15)},
			wantIncluded: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := GeneratePayroll(tt.payroll, w)
			require.NoError(t, err)
			assert.Len(t, res.Included, tt.wantIncluded)
			assert.Len(t, res.Skipped, tt.wantSkipped)
			for _, tx := range res.Included {
				assert.True(t, tx.TaxRate.IsZero())
			}
		})
	}
}

func TestGenerateCommute(t *testing.T) {
	c := domain.CommuteSchedule{
		ID:         "train",
		Title:      "Train",
		FareAmount: dec("100"),
		DayOfWeek:  time.Thursday,
		StartTime:  domain.ClockTime{Hour: 8},
		BeginDate:  day(2020, 1, 1),
	}
	w := Window{From: day(2020, 1, 1), To: day(2021, 1, 15), Now: day(2020, 1, 1)}

	res, err := GenerateCommute(c, w)
	require.NoError(t, err)
	require.NotEmpty(t, res.Included)

	first := res.Included[0]
	assert.Equal(t, time.Date(2020, 1, 2, 8, 0, 0, 0, time.UTC), first.Date)
	assertDecimal(t, "-100", first.Amount)
	assertDecimal(t, "-100", first.TotalAmount)
	assert.True(t, first.TaxRate.IsZero())

	for _, tx := range res.Included {
		assert.Equal(t, time.Thursday, tx.Date.Weekday())
	}
	assert.Len(t, res.Included, 55)
}

func TestGenerateCommute_InvalidWeekday(t *testing.T) {
	c := domain.CommuteSchedule{ID: "bus", DayOfWeek: 9, BeginDate: day(2020, 1, 1)}
	_, err := GenerateCommute(c, Window{From: day(2020, 1, 1), To: day(2020, 2, 1), Now: day(2020, 1, 1)})
	assert.ErrorIs(t, err, recurrence.ErrInvalidFrequencyRule)
}

// Every occurrence lands in exactly one bucket.
func TestGenerators_ClassificationPartition(t *testing.T) {
	e := domain.Expense{
		ID:        "daily",
		Amount:    dec("1"),
		BeginDate: day(2023, 1, 1),
		Frequency: domain.FrequencyRule{Type: domain.FrequencyDaily},
	}
	w := Window{From: day(2023, 2, 1), To: day(2023, 3, 31), Now: day(2023, 1, 20)}

	res, err := GenerateExpense(e, w)
	require.NoError(t, err)

	all, err := recurrence.Occurrences(recurrence.Daily{Step: 1}, e.BeginDate, w.To)
	require.NoError(t, err)

	discarded := 0
	for _, d := range all {
		if w.Classify(d) == Discarded {
			discarded++
		}
	}
	assert.Equal(t, 19, discarded)
	assert.Equal(t, 12, len(res.Skipped))
	assert.Equal(t, 59, len(res.Included))
	assert.Equal(t, len(all), discarded+len(res.Skipped)+len(res.Included))

	seen := map[string]bool{}
	for _, tx := range append(res.Included, res.Skipped...) {
		assert.False(t, seen[tx.ID], "duplicate %s", tx.ID)
		seen[tx.ID] = true
	}
}
