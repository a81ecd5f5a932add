package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/statement-insights/internal/api/handlers"
	"github.com/dvloznov/statement-insights/internal/api/middleware"
)

// method restricts h to a single HTTP method.
func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

func newRouter(analyze *handlers.AnalyzeHandler, jobsHandler *handlers.JobsHandler, statements *handlers.StatementsHandler) *http.ServeMux {
	mux := http.NewServeMux()

	// Report endpoints
	mux.HandleFunc("/api/analyze", method(http.MethodPost, analyze.Analyze))
	mux.HandleFunc("/api/tax", method(http.MethodPost, analyze.Tax))
	mux.HandleFunc("/api/sip", method(http.MethodPost, analyze.Sip))
	mux.HandleFunc("/api/chat", method(http.MethodPost, analyze.Chat))

	// Jobs endpoints
	mux.HandleFunc("/api/analyze/jobs", method(http.MethodPost, jobsHandler.EnqueueAnalysis))
	mux.HandleFunc("/api/jobs", method(http.MethodGet, jobsHandler.ListJobs))
	mux.HandleFunc("/api/jobs/", method(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" || strings.Contains(jobID, "/") {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	}))

	// Statements endpoints
	mux.HandleFunc("/api/statements/upload", method(http.MethodPost, statements.Upload))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
