package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/forecast"
)

var (
	_ forecast.RecordSource  = (*Store)(nil)
	_ forecast.BalanceSource = (*Store)(nil)
)

func TestCommuteRowToDomain(t *testing.T) {
	tests := []struct {
		name      string
		startTime string
		want      domain.ClockTime
		wantErr   bool
	}{
		{name: "postgres time text", startTime: "08:15:00", want: domain.ClockTime{Hour: 8, Minute: 15}},
		{name: "short form", startTime: "17:45", want: domain.ClockTime{Hour: 17, Minute: 45}},
		{name: "garbage", startTime: "quarter past eight", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := commuteRow{
				ID:         "c-1",
				FareAmount: decimal.RequireFromString("3.40"),
				DayOfWeek:  2,
				StartTime:  tt.startTime,
				BeginDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			}

			got, err := row.toDomain()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StartTime)
			assert.Equal(t, time.Tuesday, got.DayOfWeek)
			assert.Nil(t, got.EndDate)
		})
	}
}

func TestLoanRowToDomain(t *testing.T) {
	desc := "car"
	row := loanRow{
		ID:                    "loan-1",
		AccountID:             "acc-1",
		Description:           &desc,
		Principal:             decimal.NewFromInt(1000),
		PlanPaymentAmount:     decimal.NewFromInt(100),
		InterestRate:          decimal.RequireFromString("0.12"),
		InterestFrequencyType: "monthly",
		FrequencyColumns: FrequencyColumns{
			FrequencyType: "monthly",
			StepVariable:  domain.IntPtr(1),
		},
	}

	got, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, "car", got.Description)
	assert.Equal(t, domain.FrequencyMonthly, got.InterestFrequencyType)
	assert.Equal(t, domain.FrequencyMonthly, got.Frequency.Type)
	assert.Equal(t, 1, got.Frequency.Step())
	assert.True(t, got.InterestRate.Equal(decimal.RequireFromString("0.12")))
}

func TestDeref(t *testing.T) {
	s := "x"
	assert.Equal(t, "x", deref(&s))
	assert.Equal(t, "", deref(nil))
}
