package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dvloznov/statement-insights/internal/analysis"
	"github.com/dvloznov/statement-insights/internal/api/middleware"
	"github.com/dvloznov/statement-insights/internal/report"
	"github.com/dvloznov/statement-insights/internal/statement"
	"github.com/dvloznov/statement-insights/internal/tax"
)

// MaxUploadBytes caps multipart statement uploads.
const MaxUploadBytes = 10 << 20

// ReportService is the part of report.Generator the handlers use.
type ReportService interface {
	Generate(ctx context.Context, t *statement.Table, risk float64) (*report.Report, error)
	Tax(ctx context.Context, t *statement.Table) (*tax.Snapshot, error)
	Sip(ctx context.Context, req report.SipRequest) report.SipResult
	Ask(ctx context.Context, r *report.Report, question string) (string, error)
}

var _ ReportService = (*report.Generator)(nil)

// readStatement reads the multipart "file" field as a CSV statement.
func readStatement(w http.ResponseWriter, r *http.Request) (*statement.Table, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return nil, "", fmt.Errorf("invalid multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	table, err := statement.ReadCSV(file)
	if err != nil {
		return nil, "", err
	}
	return table, filename(header), nil
}

func filename(h *multipart.FileHeader) string {
	if h == nil {
		return ""
	}
	return h.Filename
}

// parseRisk parses a 0-100 risk value, using def when raw is empty.
func parseRisk(raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	risk, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(risk) || math.IsInf(risk, 0) {
		return 0, fmt.Errorf("risk must be a number between 0 and 100")
	}
	if risk < 0 || risk > 100 {
		return 0, fmt.Errorf("risk must be a number between 0 and 100")
	}
	return risk, nil
}

// writeReportError maps pipeline errors onto HTTP statuses: bad input is the
// caller's fault, everything else is ours.
func writeReportError(w http.ResponseWriter, err error) {
	var failed *analysis.AnalysisFailedError
	switch {
	case statement.IsValidationError(err), errors.Is(err, report.ErrNoTable):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &failed):
		middleware.WriteError(w, http.StatusInternalServerError, failed.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate report")
	}
}
