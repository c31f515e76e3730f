package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-forecast/internal/api/middleware"
	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/forecast"
	"github.com/dvloznov/finance-forecast/internal/logger"
)

// ForecastHandler serves forecasts computed on request.
type ForecastHandler struct {
	forecaster Forecaster
	summarizer Summarizer
	clock      clock.Clock
	horizon    time.Duration
	log        zerolog.Logger
}

// NewForecastHandler creates a new forecast handler. summarizer may be nil.
func NewForecastHandler(forecaster Forecaster, summarizer Summarizer, clk clock.Clock, horizon time.Duration, log zerolog.Logger) *ForecastHandler {
	return &ForecastHandler{
		forecaster: forecaster,
		summarizer: summarizer,
		clock:      clk,
		horizon:    horizon,
		log:        log,
	}
}

type forecastResponse struct {
	*forecast.Forecast
	Summary string `json:"summary,omitempty"`
}

// GetForecast handles GET /api/forecast?account_id=&from=&to=&summary=true
func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	from, to, err := windowParams(r, h.clock, h.horizon)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	fc, err := h.forecaster.Forecast(ctx, accountID, from, to)
	if err != nil {
		if errors.Is(err, forecast.ErrInvalidWindow) {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("account_id", accountID).Msg("Failed to compute forecast")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute forecast")
		return
	}

	resp := forecastResponse{Forecast: fc}
	if r.URL.Query().Get("summary") == "true" {
		if h.summarizer == nil {
			middleware.WriteError(w, http.StatusNotImplemented, "Summaries are not configured")
			return
		}
		// A failed summary still returns the forecast.
		if resp.Summary, err = h.summarizer.Summarize(ctx, fc); err != nil {
			log.Warn().Err(err).Str("account_id", accountID).Msg("Failed to summarize forecast")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}
