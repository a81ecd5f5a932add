package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dvloznov/statement-insights/internal/api/middleware"
	"github.com/dvloznov/statement-insights/internal/gcs"
	"github.com/rs/zerolog"
)

// ObjectUploader stores uploaded statements.
type ObjectUploader interface {
	Upload(ctx context.Context, bucketName, objectName, contentType string, r io.Reader) error
}

// StatementsHandler stores uploaded statements in Cloud Storage and can
// queue them for analysis.
type StatementsHandler struct {
	uploader ObjectUploader
	bucket   string
	jobs     *JobsHandler
	now      func() time.Time
	log      zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. jobsHandler may be
// nil, in which case analyze=true is rejected.
func NewStatementsHandler(uploader ObjectUploader, bucket string, jobsHandler *JobsHandler, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		uploader: uploader,
		bucket:   bucket,
		jobs:     jobsHandler,
		now:      time.Now,
		log:      log,
	}
}

// Upload handles POST /api/statements/upload (multipart "file", optional
// "analyze" and "risk").
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil || h.bucket == "" {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Statement uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	analyze, _ := strconv.ParseBool(r.FormValue("analyze"))
	var risk float64
	if analyze {
		if h.jobs == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Analysis jobs are not configured")
			return
		}
		risk, err = parseRisk(r.FormValue("risk"), h.jobs.defaultRisk)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	objectName := gcs.StatementObjectName(header.Filename, h.now())
	gcsURI := gcs.URI(h.bucket, objectName)

	ctx := r.Context()
	if err := h.uploader.Upload(ctx, h.bucket, objectName, "text/csv", file); err != nil {
		h.log.Error().Err(err).Str("gcs_uri", gcsURI).Msg("Failed to upload statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	h.log.Info().
		Str("gcs_uri", gcsURI).
		Int64("bytes", header.Size).
		Msg("Statement uploaded successfully")

	resp := map[string]string{
		"gcs_uri":     gcsURI,
		"object_name": objectName,
		"status":      "uploaded",
	}

	if analyze {
		id, err := h.jobs.enqueue(r, gcsURI, risk)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis job")
			return
		}
		resp["job_id"] = id
		middleware.WriteJSON(w, http.StatusAccepted, resp)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}
