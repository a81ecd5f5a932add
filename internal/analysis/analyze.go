package analysis

import (
	"fmt"
	"math"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// Analyze runs every aggregation over recs. Any failure, including a panic
// inside an aggregation, is reported as a single *AnalysisFailedError and no
// partial result is returned.
func Analyze(recs []domain.TransactionRecord) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &AnalysisFailedError{Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := checkFinite(recs); err != nil {
		return nil, &AnalysisFailedError{Cause: err}
	}

	summary, confidence := MonthlyAggregate(recs)

	res = &Result{
		MonthlySummary:     summary,
		SummaryConfidence:  confidence,
		CategoryBreakdown:  CategoryBreakdown(recs),
		Recurring:          RecurringDetection(recs),
		LargeTransactions:  LargeSingleTransactions(recs),
		Behaviour:          Behaviour(recs),
		SipCapacity:        Capacity(summary),
		MonthlyOverview:    MonthlyOverviews(recs),
		CategoryAggregates: CategoryAggregates(recs),
		CashFlow:           EstimateCashFlow(recs),
	}
	return res, nil
}

func checkFinite(recs []domain.TransactionRecord) error {
	for i, r := range recs {
		for _, v := range []float64{r.Credit, r.Debit, r.Balance} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("checkFinite: record %d (%s): non-finite amount %v", i, r.Date.Format("2006-01-02"), v)
			}
		}
	}
	return nil
}
