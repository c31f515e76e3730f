package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-forecast/internal/api/middleware"
	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/jobs"
)

// JobsHandler handles forecast job endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	clock     clock.Clock
	horizon   time.Duration
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, clk clock.Clock, horizon time.Duration, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		store:     store,
		clock:     clk,
		horizon:   horizon,
		log:       log,
	}
}

// EnqueueForecast handles POST /api/forecast/jobs
func (h *JobsHandler) EnqueueForecast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"account_id"`
		From      string `json:"from"`
		To        string `json:"to"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AccountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	// Reuse the query parameter defaults for the body fields.
	q := r.URL.Query()
	q.Set("from", req.From)
	q.Set("to", req.To)
	r.URL.RawQuery = q.Encode()

	from, to, err := windowParams(r, h.clock, h.horizon)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if to.Before(from) {
		middleware.WriteError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	job := &jobs.ForecastJob{
		AccountID: req.AccountID,
		From:      from,
		To:        to,
		Trigger:   jobs.TriggerAPI,
	}

	ctx := r.Context()
	if err := h.publisher.PublishForecast(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue forecast job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue forecast job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("account_id", req.AccountID).Msg("Forecast job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     job.JobID,
		"account_id": req.AccountID,
		"status":     string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		AccountID: query.Get("account_id"),
		Status:    jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
