package forecast

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/recurrence"
)

func sampleInput() Input {
	end := day(2024, 6, 1)
	available := day(2023, 9, 1)
	return Input{
		AccountID:      "checking",
		Window:         Window{From: day(2023, 7, 1), To: day(2023, 12, 31), Now: day(2023, 6, 10)},
		CurrentBalance: dec("1500"),
		Records: domain.Records{
			Expenses: []domain.Expense{{
				ID: "rent", Title: "Rent", Amount: dec("900"),
				BeginDate: day(2023, 1, 1), Frequency: monthly(),
			}},
			Incomes: []domain.Income{{
				ID: "freelance", Title: "Freelance", Amount: dec("400"),
				BeginDate: day(2023, 6, 15), EndDate: &end,
				Frequency: domain.FrequencyRule{Type: domain.FrequencyWeekly, StepVariable: domain.IntPtr(2)},
			}},
			Loans: []domain.Loan{{
				ID: "laptop", Title: "Laptop", Principal: dec("600"), PlanPaymentAmount: dec("250"),
				InterestRate: dec("0"), InterestFrequencyType: domain.FrequencyMonthly,
				BeginDate: day(2023, 6, 20), Frequency: monthly(),
			}},
			Transfers: []domain.Transfer{{
				ID: "to-savings", Title: "Savings", Amount: dec("100"),
				SourceAccountID: "checking", DestinationAccountID: "savings",
				BeginDate: day(2023, 1, 28), Frequency: monthly(),
			}},
			Payrolls: []domain.Payroll{{
				ID: "july", EmployerName: "Acme", GrossPay: dec("3000"), NetPay: dec("2000"),
				BeginDate: day(2023, 7, 1), EndDate: day(2023, 7, 31),
			}},
			Commutes: []domain.CommuteSchedule{{
				ID: "train", Title: "Train", FareAmount: dec("12.5"),
				DayOfWeek: time.Monday, StartTime: domain.ClockTime{Hour: 7, Minute: 45},
				BeginDate: day(2023, 6, 1),
			}},
			Wishlist: []domain.WishlistItem{{
				ID: "bike", Title: "Bike", Amount: dec("800"), DateAvailable: &available,
			}},
		},
	}
}

func TestGenerate_TimelineProperties(t *testing.T) {
	in := sampleInput()
	fc := Generate(in)

	require.Empty(t, fc.Failures)
	require.NotEmpty(t, fc.Transactions)

	kinds := map[domain.SourceKind]int{}
	for i, tx := range fc.Transactions {
		kinds[tx.SourceKind]++
		assert.False(t, tx.Date.Before(in.Window.From), "%s before window", tx.ID)
		assert.False(t, tx.Date.After(in.Window.To), "%s after window", tx.ID)
		require.True(t, tx.Balance.Valid)
		if i > 0 {
			prev := fc.Transactions[i-1]
			assert.False(t, tx.Date.Before(prev.Date))
			assert.True(t, tx.Balance.Decimal.Equal(prev.Balance.Decimal.Add(tx.TotalAmount)))
		}
	}
	for _, k := range []domain.SourceKind{
		domain.SourceExpense, domain.SourceIncome, domain.SourceLoan, domain.SourceTransfer,
		domain.SourcePayroll, domain.SourceCommute, domain.SourceWishlist,
	} {
		assert.NotZero(t, kinds[k], "no %s transactions", k)
	}

	require.Len(t, fc.LoanPayoffs, 1)
	assert.Equal(t, "laptop", fc.LoanPayoffs[0].LoanID)
	require.NotNil(t, fc.LoanPayoffs[0].FullyPaidBackDate)
	assert.Equal(t, day(2023, 8, 20), *fc.LoanPayoffs[0].FullyPaidBackDate)
}

func TestGenerate_FirstTransactionCarriesSkippedHistory(t *testing.T) {
	// Rent on Jul 1 is the first visible transaction. The skipped
	// occurrences between now and Jul 1 (freelance on Jun 15 and Jun 29,
	// laptop on Jun 20, commute on Mondays, transfer on Jun 28) must already
	// be reflected in its balance.
	fc := Generate(sampleInput())
	require.NotEmpty(t, fc.Transactions)

	first := fc.Transactions[0]
	assert.Equal(t, "rent", first.SourceID)
	// 1500 + 400 + 400 - 250 - 100 - 12.5*3 (Jun 12, 19, 26) - 900
	assertDecimal(t, "1012.5", first.Balance.Decimal)
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := json.Marshal(Generate(sampleInput()))
	require.NoError(t, err)
	second, err := json.Marshal(Generate(sampleInput()))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestGenerate_IsolatesFailingRecords(t *testing.T) {
	in := sampleInput()
	in.Records.Expenses = append(in.Records.Expenses, domain.Expense{
		ID: "broken", Amount: dec("1"), BeginDate: day(2023, 1, 1),
		Frequency: domain.FrequencyRule{Type: "hourly"},
	})
	in.Records.Loans = append(in.Records.Loans, domain.Loan{
		ID: "forever", Principal: dec("100"), InterestFrequencyType: domain.FrequencyMonthly,
		BeginDate: day(2023, 1, 1), Frequency: monthly(),
	})

	fc := Generate(in)
	healthy := Generate(sampleInput())

	require.Len(t, fc.Failures, 2)
	assert.Equal(t, "broken", fc.Failures[0].RecordID)
	assert.Equal(t, domain.SourceExpense, fc.Failures[0].Kind)
	assert.ErrorIs(t, fc.Failures[0].Err, recurrence.ErrInvalidFrequencyType)
	assert.Equal(t, "forever", fc.Failures[1].RecordID)
	assert.ErrorIs(t, fc.Failures[1].Err, ErrNonTerminatingLoan)
	assert.NotEmpty(t, fc.Failures[1].Message)

	assert.Equal(t, len(healthy.Transactions), len(fc.Transactions))
	assert.Len(t, fc.LoanPayoffs, 1)
}

func TestGenerate_EmptyRecords(t *testing.T) {
	fc := Generate(Input{
		AccountID:      "empty",
		Window:         Window{From: day(2023, 1, 1), To: day(2023, 2, 1), Now: day(2023, 1, 1)},
		CurrentBalance: dec("10"),
	})

	assert.NotNil(t, fc.Transactions)
	assert.Empty(t, fc.Transactions)

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"transactions":[]`)
	assert.Contains(t, string(raw), `"starting_balance":"10"`)
}
