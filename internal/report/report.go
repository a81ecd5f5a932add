// Package report composes every analysis stage into the final financial
// report.
package report

import (
	"github.com/dvloznov/statement-insights/internal/analysis"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/sip"
	"github.com/dvloznov/statement-insights/internal/tax"
)

// Insights carries the supporting aggregates behind the headline sections.
type Insights struct {
	SummaryConfidence  analysis.Confidence             `json:"summary_confidence"`
	SipCapacity        analysis.SipCapacity            `json:"sip_capacity"`
	CashFlow           analysis.CashFlow               `json:"cash_flow"`
	MonthlyOverview    []analysis.MonthlyOverview      `json:"monthly_overview"`
	CategoryAggregates []analysis.CategoryAggregate    `json:"category_aggregates"`
	Recurring          []analysis.RecurringEntry       `json:"recurring"`
	LargeTransactions  []analysis.LargeTransactionFlag `json:"large_transactions"`
}

// Report is the complete result of one statement analysis.
type Report struct {
	MonthlySummary    []analysis.MonthlySummary `json:"monthly_summary"`
	CategoryBreakdown analysis.Breakdown        `json:"category_breakdown"`
	BehaviourMetrics  analysis.BehaviourMetrics `json:"behaviour_metrics"`
	SipRecommendation sip.Plan                  `json:"sip_recommendation"`
	SipAnalysis       sip.Analysis              `json:"sip_analysis"`
	TaxSnapshot       tax.Snapshot              `json:"tax_snapshot"`
	AIReport          narrative.Advisory        `json:"ai_report"`
	LifeEvent         narrative.LifeEvent       `json:"life_event"`
	Insights          Insights                  `json:"insights"`
}

func (s *PipelineState) report() *Report {
	a := s.Analysis
	return &Report{
		MonthlySummary:    nonNil(a.MonthlySummary),
		CategoryBreakdown: a.CategoryBreakdown,
		BehaviourMetrics:  a.Behaviour,
		SipRecommendation: s.Plan,
		SipAnalysis:       s.SipAnalysis,
		TaxSnapshot:       s.Tax,
		AIReport:          s.Advisory,
		LifeEvent:         s.LifeEvent,
		Insights: Insights{
			SummaryConfidence:  a.SummaryConfidence,
			SipCapacity:        a.SipCapacity,
			CashFlow:           a.CashFlow,
			MonthlyOverview:    nonNil(a.MonthlyOverview),
			CategoryAggregates: nonNil(a.CategoryAggregates),
			Recurring:          nonNil(a.Recurring),
			LargeTransactions:  nonNil(a.LargeTransactions),
		},
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
