package report

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-insights/internal/analysis"
	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/sip"
	"github.com/dvloznov/statement-insights/internal/statement"
	"github.com/dvloznov/statement-insights/internal/tax"
)

// PipelineStep represents a single step of report generation.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Table *statement.Table
	Risk  float64

	Records     []domain.TransactionRecord
	Analysis    *analysis.Result
	Facts       narrative.Facts
	LifeEvent   narrative.LifeEvent
	Advisory    narrative.Advisory
	Plan        sip.Plan
	SipAnalysis sip.Analysis
	Tax         tax.Snapshot
}

// NormalizeStep validates the raw table and produces typed records.
type NormalizeStep struct {
	Options statement.Options
}

func (s *NormalizeStep) Execute(ctx context.Context, state *PipelineState) error {
	records, err := statement.Normalize(state.Table, s.Options)
	if err != nil {
		return fmt.Errorf("NormalizeStep: %w", err)
	}
	state.Records = records
	log := logger.FromContext(ctx)
	if skipped := len(state.Table.Rows) - len(records); skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("rows", len(state.Table.Rows)).Msg("dropped rows with unparseable dates")
	}
	log.Info().Int("records", len(records)).Msg("statement normalized")
	return nil
}

// AnalyzeStep runs the aggregation engine.
type AnalyzeStep struct{}

func (s *AnalyzeStep) Execute(ctx context.Context, state *PipelineState) error {
	res, err := analysis.Analyze(state.Records)
	if err != nil {
		return fmt.Errorf("AnalyzeStep: %w", err)
	}
	state.Analysis = res
	log := logger.FromContext(ctx)
	log.Info().
		Int("months", len(res.MonthlySummary)).
		Str("confidence", string(res.SummaryConfidence)).
		Int("recurring", len(res.Recurring)).
		Msg("aggregation complete")
	return nil
}

// FactsStep generates month-wise facts. It never fails.
type FactsStep struct {
	Narrator *narrative.Orchestrator
}

func (s *FactsStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Facts = s.Narrator.Facts(ctx, state.Analysis.MonthlySummary)
	return nil
}

// LifeEventStep detects a life event from the analysis text. It never fails.
type LifeEventStep struct {
	Narrator *narrative.Orchestrator
}

func (s *LifeEventStep) Execute(ctx context.Context, state *PipelineState) error {
	state.LifeEvent = s.Narrator.LifeEvent(ctx, narrative.BuildAnalysisText(state.Analysis))
	return nil
}

// AdvisoryStep turns the facts into the advisory narrative. It never fails.
type AdvisoryStep struct {
	Narrator *narrative.Orchestrator
}

func (s *AdvisoryStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Advisory = s.Narrator.Advisory(ctx, state.Facts)
	return nil
}

// SipStep sizes the SIP from the estimated cash flow and detected life event.
type SipStep struct{}

func (s *SipStep) Execute(ctx context.Context, state *PipelineState) error {
	cf := state.Analysis.CashFlow
	event := eventOrNone(state.LifeEvent.Event)
	state.Plan = sip.Recommend(cf.MonthlyIncome, cf.MonthlyExpenses, event, state.Risk)
	state.SipAnalysis = sip.Analyze(state.Plan, cf.MonthlyIncome, cf.MonthlyExpenses, state.Risk)
	log := logger.FromContext(ctx)
	log.Info().
		Int64("sip_amount", state.Plan.Amount).
		Str("event", event).
		Msg("sip recommended")
	return nil
}

// SipExplanationStep attaches a narrative explanation to the SIP analysis.
type SipExplanationStep struct {
	Narrator *narrative.Orchestrator
}

func (s *SipExplanationStep) Execute(ctx context.Context, state *PipelineState) error {
	cf := state.Analysis.CashFlow
	state.SipAnalysis.Explanation = s.Narrator.ExplainSip(ctx, narrative.SipInputs{
		Income:   cf.MonthlyIncome,
		Expenses: cf.MonthlyExpenses,
		Risk:     state.Risk,
		Event:    eventOrNone(state.LifeEvent.Event),
		Amount:   state.Plan.Amount,
	})
	return nil
}

// TaxStep computes the deterministic tax snapshot.
type TaxStep struct {
	Calculator *tax.Calculator
}

func (s *TaxStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Tax = s.Calculator.Snapshot(state.Records)
	log := logger.FromContext(ctx)
	log.Info().
		Float64("gross_income", state.Tax.Base.GrossIncome).
		Str("recommended_regime", state.Tax.Estimate.RecommendedRegime).
		Msg("tax snapshot computed")
	return nil
}

func eventOrNone(event string) string {
	if event == "" {
		return sip.EventNone
	}
	return event
}
