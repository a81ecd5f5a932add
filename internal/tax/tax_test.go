package tax

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/statement-insights/internal/domain"
)

func TestComputeOldRegimeTax(t *testing.T) {
	tests := []struct {
		taxable float64
		want    float64
	}{
		{-1000, 0},
		{0, 0},
		{250000, 0},
		{500000, 13000},
		{536000, 20488},
		{1000000, 117000},
		{1200000, 179400},
	}
	for _, tt := range tests {
		if got := ComputeOldRegimeTax(tt.taxable); got != tt.want {
			t.Errorf("ComputeOldRegimeTax(%v) = %v, want %v", tt.taxable, got, tt.want)
		}
	}
}

func TestComputeNewRegimeTax2025(t *testing.T) {
	tests := []struct {
		taxable float64
		want    float64
	}{
		{0, 0},
		{300000, 0},
		{560000, 13520},
		{600000, 15600},
		{1000000, 62400},
		{1600000, 187200},
	}
	for _, tt := range tests {
		if got := ComputeNewRegimeTax2025(tt.taxable); got != tt.want {
			t.Errorf("ComputeNewRegimeTax2025(%v) = %v, want %v", tt.taxable, got, tt.want)
		}
	}
}

func TestRegimeTax_Monotonic(t *testing.T) {
	regimes := map[string]func(float64) float64{
		"old": ComputeOldRegimeTax,
		"new": ComputeNewRegimeTax2025,
	}
	for name, fn := range regimes {
		t.Run(name, func(t *testing.T) {
			prev := fn(0)
			for x := 0.0; x <= 3000000; x += 1250 {
				got := fn(x)
				if got < prev {
					t.Fatalf("tax decreased at %v: %v < %v", x, got, prev)
				}
				prev = got
			}
		})
	}
}

func rec(detail string, credit, debit float64) domain.TransactionRecord {
	return domain.TransactionRecord{
		Date:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Credit: credit,
		Debit:  debit,
		Detail: detail,
	}
}

func TestSnapshot(t *testing.T) {
	recs := []domain.TransactionRecord{
		rec("acme payroll apr", 600000, 0),
		rec("savings interest credit", 10000, 0),
		rec("ppf deposit", 0, 50000),
		rec("star health insurance", 0, 10000),
		rec("home loan emi", 0, 20000),
		rec("apollo pharmacy", 0, 3000),
		rec("tds deducted", 0, 5000),
	}

	s := NewCalculator(DefaultRules()).Snapshot(recs)

	if s.Base.SalaryIncome != 600000 || s.Base.OtherIncome != 10000 || s.Base.GrossIncome != 610000 {
		t.Errorf("unexpected base: %+v", s.Base)
	}
	if s.Base.DeductionsClaimed != (Deductions{Section80C: 50000, Section80D: 10000, HomeLoanInterest: 14000}) {
		t.Errorf("unexpected deductions: %+v", s.Base.DeductionsClaimed)
	}
	if s.Base.Confidence != "high" {
		t.Errorf("confidence = %q", s.Base.Confidence)
	}

	wantSignals := Signals{
		SalaryDetected:               true,
		TDSDetected:                  true,
		InvestmentActivityDetected:   true,
		MedicalSpendWithoutInsurance: false,
		SignalConfidence:             "high",
	}
	if s.Signals != wantSignals {
		t.Errorf("signals = %+v, want %+v", s.Signals, wantSignals)
	}

	if s.Gaps.Remaining80C != 100000 || s.Gaps.Remaining80D != 15000 {
		t.Errorf("unexpected remaining: %+v", s.Gaps)
	}
	if len(s.Gaps.SectionsNotUtilized) != 0 || strings.Join(s.Gaps.SectionsPartiallyUtilized, ",") != "80C,80D" {
		t.Errorf("unexpected utilization: %+v", s.Gaps)
	}
	if s.Gaps.GapSeverity != "medium" {
		t.Errorf("gap severity = %q, want medium", s.Gaps.GapSeverity)
	}

	est := s.Estimate
	if est.OldRegime.TaxableIncome != 536000 || est.OldRegime.EstimatedTax != 20488 {
		t.Errorf("old regime = %+v", est.OldRegime)
	}
	if est.NewRegime.TaxableIncome != 560000 || est.NewRegime.EstimatedTax != 13520 {
		t.Errorf("new regime = %+v", est.NewRegime)
	}
	if est.NewRegime.StandardDeductionApplied == nil || !*est.NewRegime.StandardDeductionApplied {
		t.Error("expected standard deduction to be applied")
	}
	if est.RecommendedRegime != "new" {
		t.Errorf("recommended = %q, want new", est.RecommendedRegime)
	}
	if s.Disclaimer != Disclaimer {
		t.Errorf("unexpected disclaimer %q", s.Disclaimer)
	}
}

func TestSnapshot_Empty(t *testing.T) {
	s := NewCalculator(DefaultRules()).Snapshot(nil)

	if s.Base.GrossIncome != 0 || s.Base.Confidence != "low" {
		t.Errorf("unexpected base: %+v", s.Base)
	}
	if s.Estimate.OldRegime.EstimatedTax != 0 || s.Estimate.NewRegime.EstimatedTax != 0 {
		t.Errorf("expected zero tax: %+v", s.Estimate)
	}
	// Equal taxes keep the old regime.
	if s.Estimate.RecommendedRegime != "old" {
		t.Errorf("recommended = %q, want old", s.Estimate.RecommendedRegime)
	}
	if s.Gaps.GapSeverity != "high" {
		t.Errorf("gap severity = %q, want high", s.Gaps.GapSeverity)
	}
	if strings.Join(s.Gaps.SectionsNotUtilized, ",") != "80C,80D" {
		t.Errorf("not utilized = %v", s.Gaps.SectionsNotUtilized)
	}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"sections_partially_utilized":[]`) {
		t.Errorf("empty section lists should encode as []: %s", b)
	}
	if !strings.Contains(string(b), `"new_regime_2025_26"`) {
		t.Errorf("missing new regime key: %s", b)
	}
}

func TestSnapshot_RecommendsNewOnlyWhenStrictlyLower(t *testing.T) {
	calc := NewCalculator(DefaultRules())
	for _, income := range []float64{0, 100000, 350000, 700000, 1250000, 2000000} {
		s := calc.Snapshot([]domain.TransactionRecord{rec("acme salary", income, 0)})
		wantNew := s.Estimate.NewRegime.EstimatedTax < s.Estimate.OldRegime.EstimatedTax
		if (s.Estimate.RecommendedRegime == "new") != wantNew {
			t.Errorf("income %v: recommended %q with old=%v new=%v", income,
				s.Estimate.RecommendedRegime, s.Estimate.OldRegime.EstimatedTax, s.Estimate.NewRegime.EstimatedTax)
		}
	}
}

func TestSnapshot_MedicalWithoutInsurance(t *testing.T) {
	s := NewCalculator(DefaultRules()).Snapshot([]domain.TransactionRecord{
		rec("city hospital", 0, 8000),
	})
	if !s.Signals.MedicalSpendWithoutInsurance {
		t.Error("expected medical spend without insurance")
	}
}

func TestKeywordSet_Classify(t *testing.T) {
	kw := DefaultKeywords()

	tags := kw.Classify("LIC Premium via Home Loan account")
	if !tags[TagInvestment] || !tags[TagHomeLoan] {
		t.Errorf("expected investment and home loan tags, got %v", tags)
	}
	if tags[TagSalary] {
		t.Errorf("unexpected salary tag")
	}

	custom := KeywordSet{TagSalary: {"stipend"}}
	if !custom.Matches("Monthly STIPEND", TagSalary) {
		t.Error("custom keyword should match case-insensitively")
	}
	if custom.Matches("anything", TagTDS) {
		t.Error("unknown tag should never match")
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	doc := `{
		"limit_80c": 200000,
		"keywords": {"salary": ["stipend"]},
		"new_regime": {"name": "flat", "cess": 1, "slabs": [{"min": 0, "max": 0, "rate": 0.1}]}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if rules.Limit80C != 200000 {
		t.Errorf("Limit80C = %v, want 200000", rules.Limit80C)
	}
	if rules.Limit80D != 25000 {
		t.Errorf("Limit80D should keep default, got %v", rules.Limit80D)
	}
	if got := rules.NewRegime.Tax(100000); got != 10000 {
		t.Errorf("flat regime tax = %v, want 10000", got)
	}
	if rules.OldRegime.Tax(500000) != 13000 {
		t.Error("old regime should keep default slabs")
	}
	if !rules.Keywords.Matches("stipend", TagSalary) || rules.Keywords.Matches("payroll", TagSalary) {
		t.Errorf("salary keywords not replaced: %v", rules.Keywords[TagSalary])
	}
	if !rules.Keywords.Matches("ppf", TagInvestment) {
		t.Error("other keyword classes should keep defaults")
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{`},
		{"no slabs", `{"old_regime": {"name": "old", "cess": 1.04, "slabs": []}}`},
		{"cess below one", `{"old_regime": {"name": "old", "cess": 0.5, "slabs": [{"min": 0, "rate": 0}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			if err := os.WriteFile(path, []byte(tt.doc), 0o600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if _, err := LoadRules(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadRules(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
