package cronexpr

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/recurrence"
)

func TestFromRule(t *testing.T) {
	// Thursday 2023-03-16 09:05.
	anchor := time.Date(2023, time.March, 16, 9, 5, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule domain.FrequencyRule
		want string
	}{
		{
			name: "daily",
			rule: domain.FrequencyRule{Type: domain.FrequencyDaily},
			want: "5 9 * * *",
		},
		{
			name: "every third day",
			rule: domain.FrequencyRule{Type: domain.FrequencyDaily, StepVariable: domain.IntPtr(3)},
			want: "5 9 */3 * *",
		},
		{
			name: "weekly on anchor weekday",
			rule: domain.FrequencyRule{Type: domain.FrequencyWeekly},
			want: "5 9 * * 4",
		},
		{
			name: "weekly on rule weekday",
			rule: domain.FrequencyRule{Type: domain.FrequencyWeekly, DayOfWeek: domain.IntPtr(1)},
			want: "5 9 * * 1",
		},
		{
			name: "biweekly",
			rule: domain.FrequencyRule{Type: domain.FrequencyWeekly, StepVariable: domain.IntPtr(2)},
			want: "5 9 */14 * *",
		},
		{
			name: "monthly",
			rule: domain.FrequencyRule{Type: domain.FrequencyMonthly},
			want: "5 9 16 * *",
		},
		{
			name: "quarterly",
			rule: domain.FrequencyRule{Type: domain.FrequencyMonthly, StepVariable: domain.IntPtr(3)},
			want: "5 9 16 3,6,9,12 *",
		},
		{
			name: "yearly",
			rule: domain.FrequencyRule{Type: domain.FrequencyYearly},
			want: "5 9 16 3 *",
		},
		{
			name: "yearly with month override",
			rule: domain.FrequencyRule{Type: domain.FrequencyYearly, DayOfWeek: domain.IntPtr(4), MonthOfYear: domain.IntPtr(10)},
			want: "5 9 2 11 *",
		},
		{
			name: "monthly on first friday",
			rule: domain.FrequencyRule{Type: domain.FrequencyMonthly, DayOfWeek: domain.IntPtr(5)},
			want: "5 9 7 * *",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromRule(tt.rule, anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			_, err = cron.ParseStandard(got)
			assert.NoError(t, err)
		})
	}
}

func TestFromRule_FirstFireIsNextOccurrence(t *testing.T) {
	// Thursday 2024-02-15 09:00.
	anchor := time.Date(2024, time.February, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule domain.FrequencyRule
	}{
		{name: "daily", rule: domain.FrequencyRule{Type: domain.FrequencyDaily}},
		{name: "weekly on monday", rule: domain.FrequencyRule{Type: domain.FrequencyWeekly, DayOfWeek: domain.IntPtr(1)}},
		{name: "monthly", rule: domain.FrequencyRule{Type: domain.FrequencyMonthly}},
		{name: "quarterly", rule: domain.FrequencyRule{Type: domain.FrequencyMonthly, StepVariable: domain.IntPtr(3)}},
		{name: "monthly on friday", rule: domain.FrequencyRule{Type: domain.FrequencyMonthly, DayOfWeek: domain.IntPtr(5)}},
		{
			name: "second tuesday every other month",
			rule: domain.FrequencyRule{
				Type:         domain.FrequencyMonthly,
				StepVariable: domain.IntPtr(2),
				DayOfWeek:    domain.IntPtr(2),
				WeekOfMonth:  domain.IntPtr(1),
			},
		},
		{name: "yearly", rule: domain.FrequencyRule{Type: domain.FrequencyYearly}},
		{
			name: "first thursday of november",
			rule: domain.FrequencyRule{Type: domain.FrequencyYearly, DayOfWeek: domain.IntPtr(4), MonthOfYear: domain.IntPtr(10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := recurrence.Compile(tt.rule)
			require.NoError(t, err)
			occurrences, err := recurrence.Occurrences(compiled, anchor, anchor.AddDate(2, 0, 0))
			require.NoError(t, err)
			require.NotEmpty(t, occurrences)

			expr, err := FromRule(tt.rule, anchor)
			require.NoError(t, err)
			schedule, err := cron.ParseStandard(expr)
			require.NoError(t, err)

			assert.Equal(t, occurrences[0], schedule.Next(anchor.Add(-time.Minute)), "expression %q", expr)
		})
	}
}

func TestFromRule_StepMonthsFollowAnchor(t *testing.T) {
	anchor := time.Date(2024, time.February, 15, 9, 0, 0, 0, time.UTC)

	got, err := FromRule(domain.FrequencyRule{Type: domain.FrequencyMonthly, StepVariable: domain.IntPtr(3)}, anchor)
	require.NoError(t, err)
	assert.Equal(t, "0 9 15 2,5,8,11 *", got)

	got, err = FromRule(domain.FrequencyRule{Type: domain.FrequencyMonthly, StepVariable: domain.IntPtr(5)}, anchor)
	require.NoError(t, err)
	assert.Equal(t, "0 9 15 2,7,12 *", got)
}

func TestFromRule_InvalidType(t *testing.T) {
	_, err := FromRule(domain.FrequencyRule{Type: "hourly"}, time.Now())
	assert.ErrorIs(t, err, recurrence.ErrInvalidFrequencyType)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("0 12 1 */2 *"))
	assert.Error(t, Validate("61 * * * *"))
	assert.Error(t, Validate("* * *"))
}

func TestLocalRegistrar(t *testing.T) {
	var (
		mu    sync.Mutex
		fired []string
	)
	r := NewLocalRegistrar(time.UTC, func(id string) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, id)
	}, zerolog.New(io.Discard))

	h, err := r.Register("0 9 * * 1", "expense:rent")
	require.NoError(t, err)
	assert.Equal(t, "expense:rent", h.ID)
	assert.NotZero(t, h.Entry)

	_, err = r.Register("0 9 * * 1", "expense:rent")
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = r.Register("not a cron", "loan:car")
	assert.Error(t, err)

	_, err = r.Register("30 8 1 * *", "income:salary")
	require.NoError(t, err)

	schedules := r.Schedules()
	require.Len(t, schedules, 2)
	assert.Equal(t, "expense:rent", schedules[0].ID)
	assert.Equal(t, "income:salary", schedules[1].ID)

	r.Remove("expense:rent")
	r.Remove("unknown")
	assert.Len(t, r.Schedules(), 1)

	r.Start()
	r.Stop()
}
