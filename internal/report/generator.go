package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/sip"
	"github.com/dvloznov/statement-insights/internal/statement"
	"github.com/dvloznov/statement-insights/internal/tax"
)

// ErrNoTable is returned when Generate is called without a statement.
var ErrNoTable = errors.New("report: no statement table")

// Generator produces reports. It holds no per-request state and is safe
// for concurrent use.
type Generator struct {
	narrator *narrative.Orchestrator
	full     *Pipeline
	taxOnly  *Pipeline
}

func NewGenerator(opts statement.Options, narrator *narrative.Orchestrator, calc *tax.Calculator) *Generator {
	return &Generator{
		narrator: narrator,
		full:     NewReportPipeline(opts, narrator, calc),
		taxOnly:  NewTaxPipeline(opts, calc),
	}
}

// Generate runs the full pipeline over one statement. Validation and
// aggregation failures abort it; narrative sections degrade to their
// fallbacks instead.
func (g *Generator) Generate(ctx context.Context, t *statement.Table, risk float64) (*Report, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	log := logger.WithComponent(logger.FromContext(ctx), "report")
	ctx = logger.WithContext(ctx, log)

	state := &PipelineState{Table: t, Risk: risk}
	if err := g.full.Execute(ctx, state); err != nil {
		log.Error().Err(err).Msg("report generation failed")
		return nil, fmt.Errorf("Generate: %w", err)
	}

	log.Info().
		Int("months", len(state.Analysis.MonthlySummary)).
		Str("life_event", state.LifeEvent.Event).
		Msg("report generated")
	return state.report(), nil
}

// Tax computes only the tax snapshot of a statement.
func (g *Generator) Tax(ctx context.Context, t *statement.Table) (*tax.Snapshot, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	state := &PipelineState{Table: t}
	if err := g.taxOnly.Execute(ctx, state); err != nil {
		return nil, fmt.Errorf("Tax: %w", err)
	}
	return &state.Tax, nil
}

// Ask answers a question about a previously generated report.
func (g *Generator) Ask(ctx context.Context, r *Report, question string) (string, error) {
	return g.narrator.AnswerQuestion(ctx, r, question)
}

// SipRequest is a standalone SIP calculation input.
type SipRequest struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Event    string  `json:"event"`
	Risk     float64 `json:"risk"`
}

// SipResult pairs a SIP plan with its analysis.
type SipResult struct {
	Recommendation sip.Plan     `json:"sip_recommendation"`
	Analysis       sip.Analysis `json:"sip_analysis"`
}

// Sip sizes a SIP from caller-supplied figures. The event may be free text;
// it is mapped onto the life-event taxonomy first.
func (g *Generator) Sip(ctx context.Context, req SipRequest) SipResult {
	event := eventOrNone(narrative.ClassifyEvent(req.Event))
	plan := sip.Recommend(req.Income, req.Expenses, event, req.Risk)
	res := SipResult{
		Recommendation: plan,
		Analysis:       sip.Analyze(plan, req.Income, req.Expenses, req.Risk),
	}
	res.Analysis.Explanation = g.narrator.ExplainSip(ctx, narrative.SipInputs{
		Income:   req.Income,
		Expenses: req.Expenses,
		Risk:     req.Risk,
		Event:    event,
		Amount:   plan.Amount,
	})
	return res
}
