// Package tax produces a deterministic income-tax snapshot from bank
// statement transactions.
package tax

import (
	"math"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// Disclaimer is attached to every snapshot.
const Disclaimer = "This is an estimated tax snapshot derived from your bank statement. " +
	"It is not a tax filing or legal advice."

// Section names used in gap analysis.
const (
	Section80C = "80C"
	Section80D = "80D"
)

type Deductions struct {
	Section80C       float64 `json:"80C"`
	Section80D       float64 `json:"80D"`
	HomeLoanInterest float64 `json:"home_loan_interest"`
}

type Base struct {
	SalaryIncome      float64    `json:"salary_income"`
	OtherIncome       float64    `json:"other_income"`
	GrossIncome       float64    `json:"gross_income"`
	DeductionsClaimed Deductions `json:"deductions_claimed"`
	Confidence        string     `json:"confidence"`
}

type Signals struct {
	SalaryDetected               bool   `json:"salary_detected"`
	TDSDetected                  bool   `json:"tds_detected"`
	InvestmentActivityDetected   bool   `json:"investment_activity_detected"`
	MedicalSpendWithoutInsurance bool   `json:"medical_spend_without_insurance"`
	SignalConfidence             string `json:"signal_confidence"`
}

type Gaps struct {
	Remaining80C              float64  `json:"potential_80C_remaining"`
	Remaining80D              float64  `json:"potential_80D_remaining"`
	SectionsNotUtilized       []string `json:"sections_not_utilized"`
	SectionsPartiallyUtilized []string `json:"sections_partially_utilized"`
	GapSeverity               string   `json:"gap_severity"`
}

type RegimeEstimate struct {
	TaxableIncome            float64 `json:"taxable_income"`
	EstimatedTax             float64 `json:"estimated_tax"`
	StandardDeductionApplied *bool   `json:"standard_deduction_applied,omitempty"`
}

type Estimate struct {
	OldRegime         RegimeEstimate `json:"old_regime"`
	NewRegime         RegimeEstimate `json:"new_regime_2025_26"`
	RecommendedRegime string         `json:"recommended_regime"`
	Confidence        string         `json:"confidence"`
}

// Snapshot is the full tax view of one statement.
type Snapshot struct {
	Base       Base     `json:"tax_base"`
	Signals    Signals  `json:"tax_signals"`
	Gaps       Gaps     `json:"tax_gaps"`
	Estimate   Estimate `json:"tax_estimate"`
	Disclaimer string   `json:"disclaimer"`
}

// ComputeOldRegimeTax applies the default old-regime slabs and cess.
func ComputeOldRegimeTax(taxable float64) float64 {
	return DefaultRules().OldRegime.Tax(taxable)
}

// ComputeNewRegimeTax2025 applies the default FY 2025-26 new-regime slabs and cess.
func ComputeNewRegimeTax2025(taxable float64) float64 {
	return DefaultRules().NewRegime.Tax(taxable)
}

// Calculator computes snapshots under a fixed set of rules.
type Calculator struct {
	rules Rules
}

func NewCalculator(rules Rules) *Calculator {
	return &Calculator{rules: rules}
}

// Rules returns the rules the calculator was built with.
func (c *Calculator) Rules() Rules {
	return c.rules
}

// Snapshot classifies every record by its detail text and estimates tax
// under both regimes. It never fails; an empty statement yields zero tax.
func (c *Calculator) Snapshot(recs []domain.TransactionRecord) Snapshot {
	kw := c.rules.Keywords

	var salary, other, inv, ins, homeLoan, medical float64
	var tds bool
	for _, r := range recs {
		tags := kw.Classify(r.Detail)

		if tags[TagSalary] {
			salary += r.Credit
		} else if r.Credit > 0 {
			other += r.Credit
		}
		if tags[TagInvestment] {
			inv += r.Debit
		}
		if tags[TagInsurance] {
			ins += r.Debit
		}
		if tags[TagHomeLoan] {
			homeLoan += r.Debit
		}
		if tags[TagMedical] {
			medical += r.Debit
		}
		if tags[TagTDS] {
			tds = true
		}
	}

	gross := salary + other
	homeLoanInterest := homeLoan * c.rules.HomeLoanInterestShare

	standardDeduction := 0.0
	if salary > 0 {
		standardDeduction = c.rules.StandardDeduction
	}

	taxableOld := math.Max(gross-inv-ins-homeLoanInterest, 0)
	taxableNew := math.Max(gross-standardDeduction, 0)
	oldTax := c.rules.OldRegime.Tax(taxableOld)
	newTax := c.rules.NewRegime.Tax(taxableNew)

	recommended := "old"
	if newTax < oldTax {
		recommended = "new"
	}

	confidence := "low"
	if gross > 0 {
		confidence = "high"
	}

	applied := standardDeduction > 0

	return Snapshot{
		Base: Base{
			SalaryIncome: domain.Round2(salary),
			OtherIncome:  domain.Round2(other),
			GrossIncome:  domain.Round2(gross),
			DeductionsClaimed: Deductions{
				Section80C:       domain.Round2(inv),
				Section80D:       domain.Round2(ins),
				HomeLoanInterest: domain.Round2(homeLoanInterest),
			},
			Confidence: confidence,
		},
		Signals: Signals{
			SalaryDetected:               salary > 0,
			TDSDetected:                  tds,
			InvestmentActivityDetected:   inv > 0,
			MedicalSpendWithoutInsurance: medical > 0 && ins == 0,
			SignalConfidence:             "high",
		},
		Gaps: c.gaps(inv, ins),
		Estimate: Estimate{
			OldRegime: RegimeEstimate{
				TaxableIncome: domain.Round2(taxableOld),
				EstimatedTax:  oldTax,
			},
			NewRegime: RegimeEstimate{
				TaxableIncome:            domain.Round2(taxableNew),
				EstimatedTax:             newTax,
				StandardDeductionApplied: &applied,
			},
			RecommendedRegime: recommended,
			Confidence:        "medium",
		},
		Disclaimer: Disclaimer,
	}
}

func (c *Calculator) gaps(used80C, used80D float64) Gaps {
	g := Gaps{
		Remaining80C:              domain.Round2(math.Max(c.rules.Limit80C-used80C, 0)),
		Remaining80D:              domain.Round2(math.Max(c.rules.Limit80D-used80D, 0)),
		SectionsNotUtilized:       []string{},
		SectionsPartiallyUtilized: []string{},
	}

	sections := []struct {
		name        string
		used, limit float64
	}{
		{Section80C, used80C, c.rules.Limit80C},
		{Section80D, used80D, c.rules.Limit80D},
	}
	for _, s := range sections {
		switch {
		case s.used == 0:
			g.SectionsNotUtilized = append(g.SectionsNotUtilized, s.name)
		case s.used < s.limit:
			g.SectionsPartiallyUtilized = append(g.SectionsPartiallyUtilized, s.name)
		}
	}

	switch {
	case g.Remaining80C > c.rules.HighGapThreshold:
		g.GapSeverity = "high"
	case g.Remaining80C > 0:
		g.GapSeverity = "medium"
	default:
		g.GapSeverity = "low"
	}
	return g
}
