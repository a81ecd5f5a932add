package report

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/statement"
	"github.com/dvloznov/statement-insights/internal/tax"
)

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially and stops at the
// first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	for i, step := range p.steps {
		log.Debug().Int("step", i+1).Str("type", fmt.Sprintf("%T", step)).Msg("running pipeline step")
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewReportPipeline creates the full report pipeline: normalize, aggregate,
// the three narrative stages, SIP sizing and explanation, tax.
func NewReportPipeline(opts statement.Options, narrator *narrative.Orchestrator, calc *tax.Calculator) *Pipeline {
	return NewPipeline(
		&NormalizeStep{Options: opts},
		&AnalyzeStep{},
		&FactsStep{Narrator: narrator},
		&LifeEventStep{Narrator: narrator},
		&AdvisoryStep{Narrator: narrator},
		&SipStep{},
		&SipExplanationStep{Narrator: narrator},
		&TaxStep{Calculator: calc},
	)
}

// NewTaxPipeline creates the deterministic tax-only pipeline.
func NewTaxPipeline(opts statement.Options, calc *tax.Calculator) *Pipeline {
	return NewPipeline(
		&NormalizeStep{Options: opts},
		&TaxStep{Calculator: calc},
	)
}
