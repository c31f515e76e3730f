// Package cronexpr turns frequency rules into 5-field cron expressions for
// external schedulers.
package cronexpr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/recurrence"
)

// FromRule builds "minute hour day month weekday" for rule, taking the time
// of day and any unset calendar fields from anchor. Monthly and yearly rules
// are pinned to the first occurrence on or after anchor, so a weekday anchor
// becomes the concrete day of that occurrence. Monthly steps list the months
// reached from that occurrence within a year.
//
// Cron cannot express every rule exactly. Weekly steps above one become a
// day-of-month step of 7*N days, which restarts on the 1st of every month:
// every two weeks fires on days 1, 15 and 29, and steps of five or more fire
// only on the 1st. Yearly steps are ignored.
func FromRule(rule domain.FrequencyRule, anchor time.Time) (string, error) {
	compiled, err := recurrence.Compile(rule)
	if err != nil {
		return "", fmt.Errorf("FromRule: %w", err)
	}

	minute := strconv.Itoa(anchor.Minute())
	hour := strconv.Itoa(anchor.Hour())
	dom, month, dow := "*", "*", "*"

	switch r := compiled.(type) {
	case recurrence.Daily:
		dom = every(r.Step)

	case recurrence.Weekly:
		if r.Step > 1 {
			dom = every(7 * r.Step)
			break
		}
		wd := anchor.Weekday()
		if r.Weekday != nil {
			wd = *r.Weekday
		}
		dow = strconv.Itoa(int(wd))

	case recurrence.Monthly:
		next := firstOnOrAfter(r, anchor)
		dom = strconv.Itoa(next.Day())
		month = monthsFrom(next.Month(), r.Step)

	case recurrence.Yearly:
		next := firstOnOrAfter(r, anchor)
		dom = strconv.Itoa(next.Day())
		month = strconv.Itoa(int(next.Month()))
	}

	expr := fmt.Sprintf("%s %s %s %s %s", minute, hour, dom, month, dow)
	if err := Validate(expr); err != nil {
		return "", fmt.Errorf("FromRule: %w", err)
	}
	return expr, nil
}

// firstOnOrAfter returns the earliest occurrence of rule counted from anchor
// that does not precede it. Only anchored rules can snap before anchor at
// k=0, and k=1 always lands in a later month.
func firstOnOrAfter(rule recurrence.Rule, anchor time.Time) time.Time {
	next := recurrence.Occurrence(rule, anchor, 0)
	if next.Before(anchor) {
		next = recurrence.Occurrence(rule, anchor, 1)
	}
	return next
}

// monthsFrom lists the months hit by stepping from start within one year,
// e.g. February every 3 months is "2,5,8,11".
func monthsFrom(start time.Month, step int) string {
	if step <= 1 {
		return "*"
	}
	var months []int
	for k := 0; k*step < 12; k++ {
		months = append(months, (int(start)-1+k*step)%12+1)
	}
	sort.Ints(months)

	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}

// Validate parses expr with the standard 5-field cron parser.
func Validate(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

func every(step int) string {
	if step <= 1 {
		return "*"
	}
	return "*/" + strconv.Itoa(step)
}
