package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/statement-insights/internal/api/handlers"
	"github.com/dvloznov/statement-insights/internal/jobs"
	"github.com/dvloznov/statement-insights/internal/jobs/inmemory"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/oracle"
	"github.com/dvloznov/statement-insights/internal/report"
	"github.com/dvloznov/statement-insights/internal/source"
	"github.com/dvloznov/statement-insights/internal/statement"
	"github.com/dvloznov/statement-insights/internal/tax"
)

const statementCSV = `Date,Credit,Debit,Balance,Transaction Detail,Category,SubCategory
2024-01-01,50000,,50000,ACME PAYROLL,Income,Salary
2024-01-10,,30000,20000,RENT,Housing,Rent
`

type fetcherFunc func(ctx context.Context, gcsURI string) ([]byte, error)

func (f fetcherFunc) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return f(ctx, gcsURI)
}

func TestRouter_AsyncAnalysisEndToEnd(t *testing.T) {
	log := logger.NewWithWriter(io.Discard)
	gen := report.NewGenerator(
		statement.DefaultOptions(),
		narrative.NewOrchestrator(oracle.Offline{}, narrative.DefaultTimeouts()),
		tax.NewCalculator(tax.DefaultRules()),
	)

	const uri = "gs://statements/jan.csv"
	loader := &source.Loader{Storage: fetcherFunc(func(ctx context.Context, gcsURI string) ([]byte, error) {
		if gcsURI != uri {
			return nil, fmt.Errorf("unexpected object %s", gcsURI)
		}
		return []byte(statementCSV), nil
	})}

	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, 1, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := queue.Start(ctx, jobs.NewAnalyzeHandler(loader, gen)); err != nil {
		t.Fatal(err)
	}
	defer queue.Stop(context.Background())

	jobsHandler := handlers.NewJobsHandler(queue, store, 50, 0, log)
	mux := newRouter(
		handlers.NewAnalyzeHandler(gen, 50, log),
		jobsHandler,
		handlers.NewStatementsHandler(nil, "", jobsHandler, log),
	)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/analyze/jobs", "application/json",
		strings.NewReader(`{"source_uri":"`+uri+`","risk":50}`))
	if err != nil {
		t.Fatal(err)
	}
	var accepted map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&accepted)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted || accepted["job_id"] == "" {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, accepted)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(srv.URL + "/api/jobs/" + accepted["job_id"])
		if err != nil {
			t.Fatal(err)
		}
		var job struct {
			Status string          `json:"status"`
			Error  string          `json:"error"`
			Report json.RawMessage `json:"report"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&job)
		resp.Body.Close()

		if job.Status == string(jobs.JobStatusCompleted) {
			if len(job.Report) == 0 {
				t.Fatal("completed job has no report")
			}
			break
		}
		if job.Status == string(jobs.JobStatusFailed) {
			t.Fatalf("job failed: %s", job.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete, last status %q", job.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRouter_MethodsAndHealth(t *testing.T) {
	log := logger.NewWithWriter(io.Discard)
	jobsHandler := handlers.NewJobsHandler(nil, inmemory.NewStore(), 50, 0, log)
	mux := newRouter(handlers.NewAnalyzeHandler(nil, 50, log), jobsHandler, handlers.NewStatementsHandler(nil, "", nil, log))

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/analyze", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/sip", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/jobs", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/jobs/", http.StatusBadRequest},
		{http.MethodGet, "/api/jobs/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/jobs", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
