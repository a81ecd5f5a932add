package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/report"
	"github.com/dvloznov/statement-insights/internal/statement"
)

// TableLoader resolves a statement URI into a raw table.
type TableLoader interface {
	Load(ctx context.Context, uri string) (*statement.Table, error)
}

// ReportGenerator produces a report from a raw table.
type ReportGenerator interface {
	Generate(ctx context.Context, t *statement.Table, risk float64) (*report.Report, error)
}

// NewAnalyzeHandler returns a JobHandler that loads the job's statement and
// stores the generated report on the job. Input validation failures are
// permanent.
func NewAnalyzeHandler(loader TableLoader, gen ReportGenerator) JobHandler {
	return func(ctx context.Context, job Job) error {
		j, ok := job.(*AnalyzeStatementJob)
		if !ok {
			return Permanent(fmt.Errorf("AnalyzeHandler: unexpected job type %s", job.GetType()))
		}

		log := logger.FromContext(ctx).With().Str("job_id", j.JobID).Str("source_uri", j.SourceURI).Logger()
		ctx = logger.WithContext(ctx, log)

		table, err := loader.Load(ctx, j.SourceURI)
		if err != nil {
			if statement.IsValidationError(err) {
				err = Permanent(err)
			}
			return fmt.Errorf("AnalyzeHandler: load statement: %w", err)
		}

		rep, err := gen.Generate(ctx, table, j.Risk)
		if err != nil {
			if statement.IsValidationError(err) {
				err = Permanent(err)
			}
			return fmt.Errorf("AnalyzeHandler: generate report: %w", err)
		}

		j.Report = rep
		log.Info().Int("months", len(rep.MonthlySummary)).Msg("Statement analyzed")
		return nil
	}
}
