// Package recurrence turns frequency rules into concrete occurrence dates.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

var (
	// ErrInvalidFrequencyType is returned for a rule type outside daily/weekly/monthly/yearly.
	ErrInvalidFrequencyType = errors.New("invalid frequency type")

	// ErrInvalidFrequencyRule is returned for out-of-range fields or fields
	// that the rule's family cannot carry.
	ErrInvalidFrequencyRule = errors.New("invalid frequency rule")
)

// LastWeek is the WeekOfMonth value meaning "last week of the month".
const LastWeek = 4

// Rule is a compiled recurrence rule. It is implemented only by Daily,
// Weekly, Monthly and Yearly.
type Rule interface {
	Type() domain.FrequencyType
	StepCount() int
	isRule()
}

// Daily repeats every Step days.
type Daily struct {
	Step int
}

// Weekly repeats every Step weeks, optionally snapped forward to Weekday.
type Weekly struct {
	Step    int
	Weekday *time.Weekday
}

// WeekdayAnchor pins a monthly or yearly occurrence to a weekday of the month.
// Week counts additional weeks after the first matching weekday; nil means 0.
type WeekdayAnchor struct {
	Weekday time.Weekday
	Week    *int
}

// Monthly repeats every Step months.
type Monthly struct {
	Step   int
	Anchor *WeekdayAnchor
}

// YearlyAnchor is a WeekdayAnchor with an optional month override.
type YearlyAnchor struct {
	WeekdayAnchor
	Month *time.Month
}

// Yearly repeats every Step years.
type Yearly struct {
	Step   int
	Anchor *YearlyAnchor
}

func (Daily) Type() domain.FrequencyType   { return domain.FrequencyDaily }
func (Weekly) Type() domain.FrequencyType  { return domain.FrequencyWeekly }
func (Monthly) Type() domain.FrequencyType { return domain.FrequencyMonthly }
func (Yearly) Type() domain.FrequencyType  { return domain.FrequencyYearly }

func (r Daily) StepCount() int   { return r.Step }
func (r Weekly) StepCount() int  { return r.Step }
func (r Monthly) StepCount() int { return r.Step }
func (r Yearly) StepCount() int  { return r.Step }

func (Daily) isRule()   {}
func (Weekly) isRule()  {}
func (Monthly) isRule() {}
func (Yearly) isRule()  {}

// Compile validates a stored rule and converts it to its family type.
func Compile(fr domain.FrequencyRule) (Rule, error) {
	step := fr.Step()
	if step < 1 {
		return nil, fmt.Errorf("%w: step_variable must be positive, got %d", ErrInvalidFrequencyRule, step)
	}

	var weekday *time.Weekday
	if fr.DayOfWeek != nil {
		if *fr.DayOfWeek < 0 || *fr.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: day_of_week %d out of range 0-6", ErrInvalidFrequencyRule, *fr.DayOfWeek)
		}
		wd := time.Weekday(*fr.DayOfWeek)
		weekday = &wd
	}
	if fr.WeekOfMonth != nil && (*fr.WeekOfMonth < 0 || *fr.WeekOfMonth > LastWeek) {
		return nil, fmt.Errorf("%w: week_of_month %d out of range 0-4", ErrInvalidFrequencyRule, *fr.WeekOfMonth)
	}
	if fr.MonthOfYear != nil && (*fr.MonthOfYear < 0 || *fr.MonthOfYear > 11) {
		return nil, fmt.Errorf("%w: month_of_year %d out of range 0-11", ErrInvalidFrequencyRule, *fr.MonthOfYear)
	}

	switch fr.Type {
	case domain.FrequencyDaily:
		if fr.DayOfWeek != nil || fr.WeekOfMonth != nil || fr.MonthOfYear != nil {
			return nil, fmt.Errorf("%w: daily rules take no calendar fields", ErrInvalidFrequencyRule)
		}
		return Daily{Step: step}, nil

	case domain.FrequencyWeekly:
		if fr.WeekOfMonth != nil || fr.MonthOfYear != nil {
			return nil, fmt.Errorf("%w: weekly rules take only day_of_week", ErrInvalidFrequencyRule)
		}
		return Weekly{Step: step, Weekday: weekday}, nil

	case domain.FrequencyMonthly:
		if fr.MonthOfYear != nil {
			return nil, fmt.Errorf("%w: monthly rules take no month_of_year", ErrInvalidFrequencyRule)
		}
		if weekday == nil {
			if fr.WeekOfMonth != nil {
				return nil, fmt.Errorf("%w: week_of_month requires day_of_week", ErrInvalidFrequencyRule)
			}
			return Monthly{Step: step}, nil
		}
		return Monthly{Step: step, Anchor: &WeekdayAnchor{Weekday: *weekday, Week: fr.WeekOfMonth}}, nil

	case domain.FrequencyYearly:
		if weekday == nil {
			if fr.WeekOfMonth != nil || fr.MonthOfYear != nil {
				return nil, fmt.Errorf("%w: week_of_month and month_of_year require day_of_week", ErrInvalidFrequencyRule)
			}
			return Yearly{Step: step}, nil
		}
		anchor := &YearlyAnchor{WeekdayAnchor: WeekdayAnchor{Weekday: *weekday, Week: fr.WeekOfMonth}}
		if fr.MonthOfYear != nil {
			m := time.Month(*fr.MonthOfYear + 1)
			anchor.Month = &m
		}
		return Yearly{Step: step, Anchor: anchor}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequencyType, fr.Type)
	}
}

// PeriodsPerYear is how many times a rate compounds per year for a family.
func PeriodsPerYear(t domain.FrequencyType) (int64, error) {
	switch t {
	case domain.FrequencyDaily:
		return 365, nil
	case domain.FrequencyWeekly:
		return 52, nil
	case domain.FrequencyMonthly:
		return 12, nil
	case domain.FrequencyYearly:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrequencyType, t)
	}
}
