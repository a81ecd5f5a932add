package analysis

import (
	"math"
	"strings"

	"github.com/dvloznov/statement-insights/internal/domain"
)

const (
	// SalaryJumpPct is the month-over-month salary change above which income
	// is considered to have moved sharply.
	SalaryJumpPct = 10.0

	// ExpenseVolatilityThreshold is the debit standard deviation above which
	// spending is considered volatile.
	ExpenseVolatilityThreshold = 10000.0
)

// Behaviour derives salary stability and expense volatility from every
// record, including months dropped from the monthly summary.
func Behaviour(recs []domain.TransactionRecord) BehaviourMetrics {
	salary := make(map[domain.MonthKey]float64)
	debits := make([]float64, 0, len(recs))
	for _, r := range recs {
		if strings.Contains(strings.ToLower(r.Subcategory), "salary") {
			salary[r.Month()] += r.Credit
		}
		debits = append(debits, r.Debit)
	}

	m := BehaviourMetrics{
		IncomeStability:   StabilityStable,
		ExpenseVolatility: VolatilityMedium,
	}

	months := sortedMonths(salary)
	if n := len(months); n >= 2 {
		last, prev := salary[months[n-1]], salary[months[n-2]]
		if prev != 0 {
			pct := domain.Round((last-prev)/prev*100, 1)
			m.SalaryChangePct = &pct
		}
	}
	if m.SalaryChangePct != nil && *m.SalaryChangePct > SalaryJumpPct {
		m.IncomeStability = StabilityHigh
	}

	if sampleStdDev(debits) > ExpenseVolatilityThreshold {
		m.ExpenseVolatility = VolatilityHigh
	}
	return m
}

// sampleStdDev is the n-1 standard deviation; fewer than two values give 0.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
