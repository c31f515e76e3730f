package main

import (
	"fmt"
	"time"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// parseWindow resolves the from/to flags. from defaults to the start of
// now's day and to defaults to from plus horizon.
func parseWindow(now time.Time, fromStr, toStr string, horizon time.Duration) (from, to time.Time, err error) {
	from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if fromStr != "" {
		if from, err = time.ParseInLocation(time.DateOnly, fromStr, now.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
		}
	}

	to = from.Add(horizon)
	if toStr != "" {
		if to, err = time.ParseInLocation(time.DateOnly, toStr, now.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
		}
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to %s is before from %s", toStr, from.Format(time.DateOnly))
	}
	return from, to, nil
}

// optional maps the -1 "unset" flag value to nil.
func optional(v int) *int {
	if v < 0 {
		return nil
	}
	return domain.IntPtr(v)
}
