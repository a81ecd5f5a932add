package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dvloznov/statement-insights/internal/api/middleware"
	"github.com/dvloznov/statement-insights/internal/jobs"
	"github.com/dvloznov/statement-insights/internal/source"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	publisher   jobs.Publisher
	store       jobs.JobStore
	defaultRisk float64
	maxRetries  int
	log         zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, defaultRisk float64, maxRetries int, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		publisher:   publisher,
		store:       store,
		defaultRisk: defaultRisk,
		maxRetries:  maxRetries,
		log:         log,
	}
}

// EnqueueAnalysis handles POST /api/analyze/jobs: {"source_uri": "...", "risk": 50}.
func (h *JobsHandler) EnqueueAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceURI string   `json:"source_uri"`
		Risk      *float64 `json:"risk"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.SourceURI = strings.TrimSpace(req.SourceURI)
	if req.SourceURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "source_uri is required")
		return
	}
	if !source.IsRemote(req.SourceURI) {
		middleware.WriteError(w, http.StatusBadRequest, "source_uri must be a gs:// or bq:// URI")
		return
	}

	risk := h.defaultRisk
	if req.Risk != nil {
		if *req.Risk < 0 || *req.Risk > 100 {
			middleware.WriteError(w, http.StatusBadRequest, "risk must be a number between 0 and 100")
			return
		}
		risk = *req.Risk
	}

	id, err := h.enqueue(r, req.SourceURI, risk)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis job")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     id,
		"source_uri": req.SourceURI,
		"status":     string(jobs.JobStatusPending),
	})
}

// enqueue publishes an analysis job and returns its ID. The ID is assigned
// here because the job value belongs to the queue once published.
func (h *JobsHandler) enqueue(r *http.Request, sourceURI string, risk float64) (string, error) {
	id := uuid.New().String()
	job := &jobs.AnalyzeStatementJob{
		JobID:      id,
		SourceURI:  sourceURI,
		Risk:       risk,
		MaxRetries: h.maxRetries,
	}
	if err := h.publisher.PublishAnalyzeStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("source_uri", sourceURI).Msg("Failed to enqueue analysis job")
		return "", err
	}

	h.log.Info().Str("job_id", id).Str("source_uri", sourceURI).Msg("Analysis job enqueued")
	return id, nil
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
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

// ListJobs handles GET /api/jobs. Reports are omitted from the listing.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		SourceURI: query.Get("source_uri"),
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
	for _, j := range jobsList {
		j.Report = nil
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
