package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dvloznov/finance-forecast/internal/api/middleware"
	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/cronexpr"
	"github.com/dvloznov/finance-forecast/internal/domain"
	"github.com/dvloznov/finance-forecast/internal/recurrence"
)

// CronHandler converts frequency rules into cron expressions.
type CronHandler struct {
	clock clock.Clock
}

// NewCronHandler creates a new cron handler.
func NewCronHandler(clk clock.Clock) *CronHandler {
	return &CronHandler{clock: clk}
}

// GetExpression handles
// GET /api/cron?type=&step=&day_of_week=&week_of_month=&month_of_year=&at=
// at is the anchor instant (RFC 3339 or YYYY-MM-DD) and defaults to now.
func (h *CronHandler) GetExpression(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rule := domain.FrequencyRule{Type: domain.FrequencyType(query.Get("type"))}

	fields := []struct {
		name string
		dst  **int
	}{
		{"step", &rule.StepVariable},
		{"day_of_week", &rule.DayOfWeek},
		{"week_of_month", &rule.WeekOfMonth},
		{"month_of_year", &rule.MonthOfYear},
	}
	for _, f := range fields {
		v, err := optionalInt(r, f.name)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		*f.dst = v
	}

	anchor := h.clock.Now()
	if s := query.Get("at"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid at")
			return
		}
		anchor = t
	}

	expr, err := cronexpr.FromRule(rule, anchor)
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidFrequencyType) || errors.Is(err, recurrence.ErrInvalidFrequencyRule) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build cron expression")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"expression": expr,
		"anchor":     anchor.Format(time.RFC3339),
	})
}
