package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dvloznov/statement-insights/internal/api/middleware"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/report"
	"github.com/rs/zerolog"
)

// AnalyzeHandler serves the synchronous report endpoints.
type AnalyzeHandler struct {
	reports     ReportService
	defaultRisk float64
	log         zerolog.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(reports ReportService, defaultRisk float64, log zerolog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		reports:     reports,
		defaultRisk: defaultRisk,
		log:         log,
	}
}

// Analyze handles POST /api/analyze (multipart "file", optional form "risk").
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	table, name, err := readStatement(w, r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	risk, err := parseRisk(r.FormValue("risk"), h.defaultRisk)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	rep, err := h.reports.Generate(ctx, table, risk)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("filename", name).Msg("Failed to analyze statement")
		writeReportError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, rep)
}

// Tax handles POST /api/tax (multipart "file"). Only deterministic sections
// are computed.
func (h *AnalyzeHandler) Tax(w http.ResponseWriter, r *http.Request) {
	table, _, err := readStatement(w, r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.reports.Tax(r.Context(), table)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute tax snapshot")
		writeReportError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, snap)
}

// Sip handles POST /api/sip with a JSON report.SipRequest body.
func (h *AnalyzeHandler) Sip(w http.ResponseWriter, r *http.Request) {
	var req report.SipRequest
	req.Risk = h.defaultRisk
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Income < 0 || req.Expenses < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "income and expenses must not be negative")
		return
	}
	if req.Risk < 0 || req.Risk > 100 {
		middleware.WriteError(w, http.StatusBadRequest, "risk must be a number between 0 and 100")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.reports.Sip(r.Context(), req))
}

// Chat handles POST /api/chat: {"report": {...}, "question": "..."}.
func (h *AnalyzeHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Report   *report.Report `json:"report"`
		Question string         `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Report == nil {
		middleware.WriteError(w, http.StatusBadRequest, "report is required")
		return
	}

	answer, err := h.reports.Ask(r.Context(), req.Report, req.Question)
	if err != nil {
		if errors.Is(err, narrative.ErrEmptyQuestion) {
			middleware.WriteError(w, http.StatusBadRequest, "question is required")
			return
		}
		h.log.Error().Err(err).Msg("Failed to answer question")
		middleware.WriteError(w, http.StatusBadGateway, "AI assistant is unavailable")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
