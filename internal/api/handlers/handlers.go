package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dvloznov/finance-forecast/internal/api/middleware"
	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/forecast"
)

// Forecaster computes a forecast for an account and window.
type Forecaster interface {
	Forecast(ctx context.Context, accountID string, from, to time.Time) (*forecast.Forecast, error)
}

// Summarizer describes a forecast in plain language.
type Summarizer interface {
	Summarize(ctx context.Context, fc *forecast.Forecast) (string, error)
}

// windowParams reads from/to query parameters. from defaults to today,
// to defaults to from plus horizon.
func windowParams(r *http.Request, clk clock.Clock, horizon time.Duration) (from, to time.Time, err error) {
	query := r.URL.Query()

	now := clk.Now()
	from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if s := query.Get("from"); s != "" {
		if from, err = parseDate(s); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
		}
	}

	to = from.Add(horizon)
	if s := query.Get("to"); s != "" {
		if to, err = parseDate(s); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
		}
	}

	return from, to, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// optionalInt parses an integer query parameter; a missing parameter is nil.
func optionalInt(r *http.Request, name string) (*int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}

// Health handles GET /health
func Health(clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   clk.Now().Format(time.RFC3339),
		})
	}
}
