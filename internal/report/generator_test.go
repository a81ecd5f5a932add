package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dvloznov/statement-insights/internal/analysis"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/oracle"
	"github.com/dvloznov/statement-insights/internal/sip"
	"github.com/dvloznov/statement-insights/internal/statement"
	"github.com/dvloznov/statement-insights/internal/tax"
)

const threeMonths = `Date,Credit,Debit,Balance,Transaction Detail,Category,SubCategory
2024-01-01,50000,,50000,ACME PAYROLL,Income,Salary
2024-01-10,,30000,20000,RENT,Housing,Rent
2024-02-01,52000,,72000,ACME PAYROLL,Income,Salary
2024-02-10,,31000,41000,RENT,Housing,Rent
2024-03-10,,20000,21000,RENT,Housing,Rent
`

// mockOracle is a mock implementation of oracle.TextOracle.
type mockOracle struct {
	CompleteFunc func(ctx context.Context, req oracle.Request) (string, error)
}

func (m *mockOracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", errors.New("not implemented")
}

func table(t *testing.T, csv string) *statement.Table {
	t.Helper()
	tbl, err := statement.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	return tbl
}

func newGenerator(o oracle.TextOracle) *Generator {
	return NewGenerator(
		statement.DefaultOptions(),
		narrative.NewOrchestrator(o, narrative.DefaultTimeouts()),
		tax.NewCalculator(tax.DefaultRules()),
	)
}

func TestGenerate_OfflineOracle(t *testing.T) {
	g := newGenerator(oracle.Offline{})

	r, err := g.Generate(context.Background(), table(t, threeMonths), 50)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(r.MonthlySummary) != 2 {
		t.Errorf("expected 2 qualifying months, got %d", len(r.MonthlySummary))
	}
	if r.Insights.SummaryConfidence != analysis.ConfidenceLow {
		t.Errorf("confidence = %q", r.Insights.SummaryConfidence)
	}

	// Narrative sections degrade to fallbacks.
	if !reflect.DeepEqual(r.AIReport, narrative.FallbackAdvisory()) {
		t.Errorf("AIReport = %+v, want fallback", r.AIReport)
	}
	if r.LifeEvent != narrative.FallbackLifeEvent() {
		t.Errorf("LifeEvent = %+v, want fallback", r.LifeEvent)
	}
	if r.SipAnalysis.Explanation != sip.FallbackExplanation {
		t.Errorf("Explanation = %q", r.SipAnalysis.Explanation)
	}

	// Deterministic sections are intact.
	// (102000-81000) * 0.3 * 0.7
	if r.SipRecommendation.Amount != 4410 {
		t.Errorf("sip amount = %d, want 4410", r.SipRecommendation.Amount)
	}
	if r.Insights.CashFlow != (analysis.CashFlow{MonthlyIncome: 102000, MonthlyExpenses: 81000}) {
		t.Errorf("cash flow = %+v", r.Insights.CashFlow)
	}
	if r.TaxSnapshot.Base.GrossIncome != 102000 || r.TaxSnapshot.Estimate.RecommendedRegime != "old" {
		t.Errorf("unexpected tax snapshot %+v", r.TaxSnapshot)
	}
}

func TestGenerate_LifeEventDampensSip(t *testing.T) {
	m := &mockOracle{CompleteFunc: func(_ context.Context, req oracle.Request) (string, error) {
		if strings.Contains(req.Messages[1].Content, "MOST LIKELY life event") {
			return `{"eventName": "Marriage", "reasoning": "wedding vendors"}`, nil
		}
		return "", &oracle.StatusError{StatusCode: 503, Body: "busy"}
	}}
	g := newGenerator(m)

	r, err := g.Generate(context.Background(), table(t, threeMonths), 50)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if r.LifeEvent.Event != sip.EventWedding || r.LifeEvent.Reason != "wedding vendors" {
		t.Errorf("LifeEvent = %+v", r.LifeEvent)
	}
	if r.SipRecommendation.Amount != 3748 {
		t.Errorf("sip amount = %d, want 3748", r.SipRecommendation.Amount)
	}
}

func TestGenerate_SipUsesStatementTotals(t *testing.T) {
	const steady = `Date,Credit,Debit,Balance,Transaction Detail,Category,SubCategory
2024-01-01,50000,,50000,ACME PAYROLL,Income,Salary
2024-01-10,,30000,20000,RENT,Housing,Rent
2024-02-01,50000,,70000,ACME PAYROLL,Income,Salary
2024-02-10,,30000,40000,RENT,Housing,Rent
2024-03-01,50000,,90000,ACME PAYROLL,Income,Salary
2024-03-10,,30000,60000,RENT,Housing,Rent
`
	r, err := newGenerator(oracle.Offline{}).Generate(context.Background(), table(t, steady), 50)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if r.Insights.CashFlow != (analysis.CashFlow{MonthlyIncome: 150000, MonthlyExpenses: 90000}) {
		t.Errorf("cash flow = %+v", r.Insights.CashFlow)
	}
	if r.SipRecommendation.Amount != 12600 {
		t.Errorf("sip amount = %d, want 12600", r.SipRecommendation.Amount)
	}
}

func TestNormalizeStep_LogsSkippedRows(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		wantRecords int
		wantWarning bool
	}{
		{"all rows dated", threeMonths, 5, false},
		{"one bad date", threeMonths + "someday,,10,0,X,Misc,Misc\n", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf))
			state := &PipelineState{Table: table(t, tt.csv)}

			step := &NormalizeStep{Options: statement.DefaultOptions()}
			if err := step.Execute(ctx, state); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if len(state.Records) != tt.wantRecords {
				t.Errorf("records = %d, want %d", len(state.Records), tt.wantRecords)
			}
			warned := strings.Contains(buf.String(), `"skipped":1`)
			if warned != tt.wantWarning {
				t.Errorf("skipped-row warning = %v, want %v; log: %s", warned, tt.wantWarning, buf.String())
			}
		})
	}
}

func TestGenerate_ValidationErrorHalts(t *testing.T) {
	calls := 0
	m := &mockOracle{CompleteFunc: func(context.Context, oracle.Request) (string, error) {
		calls++
		return "{}", nil
	}}
	g := newGenerator(m)

	r, err := g.Generate(context.Background(), table(t, "Date,Credit,Debit\n2024-01-01,1,0\n"), 50)

	if r != nil {
		t.Errorf("expected no report, got %+v", r)
	}
	var missing *statement.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if !statement.IsValidationError(err) {
		t.Error("expected a validation error")
	}
	if calls != 0 {
		t.Errorf("oracle should not be called, got %d calls", calls)
	}
}

func TestGenerate_NilTable(t *testing.T) {
	if _, err := newGenerator(nil).Generate(context.Background(), nil, 50); !errors.Is(err, ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}
}

func TestReport_JSONShape(t *testing.T) {
	r, err := newGenerator(oracle.Offline{}).Generate(context.Background(), table(t, threeMonths), 50)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(b, &shape); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{
		"monthly_summary", "category_breakdown", "behaviour_metrics", "sip_recommendation",
		"sip_analysis", "tax_snapshot", "ai_report", "life_event", "insights",
	} {
		if _, ok := shape[key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
	if !strings.Contains(string(shape["category_breakdown"]), `"2024-03"`) {
		t.Errorf("category breakdown should be keyed by month: %s", shape["category_breakdown"])
	}
	if !strings.Contains(string(shape["sip_recommendation"]), `"equity":"60%"`) {
		t.Errorf("unexpected sip recommendation: %s", shape["sip_recommendation"])
	}
}

func TestGenerator_Tax(t *testing.T) {
	g := newGenerator(nil)

	snap, err := g.Tax(context.Background(), table(t, threeMonths))
	if err != nil {
		t.Fatalf("Tax failed: %v", err)
	}
	if !snap.Signals.SalaryDetected || snap.Base.SalaryIncome != 102000 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestGenerator_Ask(t *testing.T) {
	m := &mockOracle{CompleteFunc: func(context.Context, oracle.Request) (string, error) {
		return "You saved 20000 in January.", nil
	}}
	g := newGenerator(m)

	answer, err := g.Ask(context.Background(), &Report{}, "How much did I save?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if answer != "You saved 20000 in January." {
		t.Errorf("answer = %q", answer)
	}
}

type failingStep struct{ err error }

func (s *failingStep) Execute(context.Context, *PipelineState) error { return s.err }

type countingStep struct{ n *int }

func (s *countingStep) Execute(context.Context, *PipelineState) error {
	*s.n++
	return nil
}

func TestPipeline_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	n := 0
	p := NewPipeline(&countingStep{&n}, &failingStep{boom}, &countingStep{&n})

	err := p.Execute(context.Background(), &PipelineState{})

	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline step 2 failed") {
		t.Errorf("error should name the step: %v", err)
	}
	if n != 1 {
		t.Errorf("steps after the failure should not run, ran %d", n)
	}
}

func TestGenerator_Sip(t *testing.T) {
	var prompt string
	g := newGenerator(&mockOracle{CompleteFunc: func(ctx context.Context, req oracle.Request) (string, error) {
		prompt = req.Messages[len(req.Messages)-1].Content
		return "  Start small and stay consistent.  ", nil
	}})

	tests := []struct {
		name  string
		event string
		want  int64
	}{
		{"no event", "", 6300},
		{"free text wedding", "Marriage", 5355},
		{"unknown event", "lottery", 6300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Sip(context.Background(), SipRequest{Income: 100000, Expenses: 70000, Event: tt.event, Risk: 50})
			if res.Recommendation.Amount != tt.want {
				t.Errorf("Amount = %d, want %d", res.Recommendation.Amount, tt.want)
			}
			if res.Analysis.Amount != res.Recommendation.Amount {
				t.Errorf("analysis amount %d differs from plan %d", res.Analysis.Amount, res.Recommendation.Amount)
			}
			if res.Analysis.Explanation != "Start small and stay consistent." {
				t.Errorf("Explanation = %q", res.Analysis.Explanation)
			}
		})
	}
	if !strings.Contains(prompt, "6300") {
		t.Errorf("prompt should carry the amount: %s", prompt)
	}
}
