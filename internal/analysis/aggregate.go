package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/dvloznov/statement-insights/internal/domain"
)

const (
	// MinConfidentMonths is the number of qualifying months needed for a
	// high-confidence summary.
	MinConfidentMonths = 3

	// LargeTransactionRatio flags groups dominated by one transaction.
	LargeTransactionRatio = 0.5

	safeSipShare = 0.6
	maxSipShare  = 0.8
)

// MonthlyAggregate sums credits and debits per month. Months without any
// income are treated as incomplete data and left out of the summary. The
// result is ordered chronologically.
func MonthlyAggregate(recs []domain.TransactionRecord) ([]MonthlySummary, Confidence) {
	type totals struct{ income, expenses float64 }
	byMonth := make(map[domain.MonthKey]*totals)
	for _, r := range recs {
		m := r.Month()
		t, ok := byMonth[m]
		if !ok {
			t = &totals{}
			byMonth[m] = t
		}
		t.income += r.Credit
		t.expenses += r.Debit
	}

	summary := make([]MonthlySummary, 0, len(byMonth))
	for _, m := range sortedMonths(byMonth) {
		t := byMonth[m]
		if t.income <= 0 {
			continue
		}
		savings := t.income - t.expenses
		obs := ExpensesExceeded
		if savings > 0 {
			obs = IncomeExceeded
		}
		summary = append(summary, MonthlySummary{
			Month:       m,
			Income:      domain.Round2(t.income),
			Expenses:    domain.Round2(t.expenses),
			Savings:     domain.Round2(savings),
			Observation: obs,
		})
	}

	confidence := ConfidenceHigh
	if len(summary) < MinConfidentMonths {
		confidence = ConfidenceLow
	}
	return summary, confidence
}

// CategoryBreakdown sums debits per (month, category, subcategory), sorted
// by amount descending within each month.
func CategoryBreakdown(recs []domain.TransactionRecord) Breakdown {
	type key struct {
		month                 domain.MonthKey
		category, subcategory string
	}
	sums := make(map[key]float64)
	for _, r := range recs {
		if r.Debit <= 0 {
			continue
		}
		sums[key{r.Month(), r.Category, r.Subcategory}] += r.Debit
	}

	out := make(Breakdown)
	for k, amount := range sums {
		out[k.month] = append(out[k.month], CategoryAmount{
			Category:    k.category,
			Subcategory: k.subcategory,
			Amount:      domain.Round2(amount),
		})
	}
	for m := range out {
		lines := out[m]
		sort.Slice(lines, func(i, j int) bool {
			if lines[i].Amount != lines[j].Amount {
				return lines[i].Amount > lines[j].Amount
			}
			if lines[i].Category != lines[j].Category {
				return lines[i].Category < lines[j].Category
			}
			return lines[i].Subcategory < lines[j].Subcategory
		})
	}
	return out
}

// LargeSingleTransactions computes, for every (month, category, subcategory)
// group, the share of the group's absolute movement taken by its largest
// transaction.
func LargeSingleTransactions(recs []domain.TransactionRecord) []LargeTransactionFlag {
	type key struct {
		month                 domain.MonthKey
		category, subcategory string
	}
	type agg struct{ max, sum float64 }
	groups := make(map[key]*agg)
	var order []key
	for _, r := range recs {
		k := key{r.Month(), r.Category, r.Subcategory}
		g, ok := groups[k]
		if !ok {
			g = &agg{}
			groups[k] = g
			order = append(order, k)
		}
		abs := math.Abs(r.Amount())
		g.sum += abs
		if abs > g.max {
			g.max = abs
		}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.month != b.month {
			return a.month.Before(b.month)
		}
		if a.category != b.category {
			return a.category < b.category
		}
		return a.subcategory < b.subcategory
	})

	flags := make([]LargeTransactionFlag, 0, len(order))
	for _, k := range order {
		g := groups[k]
		ratio := 0.0
		if g.sum != 0 {
			ratio = g.max / g.sum
		}
		flags = append(flags, LargeTransactionFlag{
			Month:        k.month,
			Category:     k.category,
			Subcategory:  k.subcategory,
			LargestRatio: domain.Round(ratio, 4),
			Flagged:      ratio >= LargeTransactionRatio,
		})
	}
	return flags
}

// Capacity derives SIP capacity from the average savings of the summary
// months. An empty summary has zero capacity.
func Capacity(summary []MonthlySummary) SipCapacity {
	if len(summary) == 0 {
		return SipCapacity{}
	}
	var total float64
	for _, m := range summary {
		total += m.Savings
	}
	avg := total / float64(len(summary))
	return SipCapacity{
		SafeMonthlySip: int64(math.Floor(avg * safeSipShare)),
		MaxPossibleSip: int64(math.Floor(avg * maxSipShare)),
	}
}

// MonthlyOverviews returns closing balance, count and flow totals per month.
// Records are expected in chronological order; the closing balance is the
// balance of the month's last record.
func MonthlyOverviews(recs []domain.TransactionRecord) []MonthlyOverview {
	byMonth := make(map[domain.MonthKey]*MonthlyOverview)
	for _, r := range recs {
		m := r.Month()
		o, ok := byMonth[m]
		if !ok {
			o = &MonthlyOverview{Month: m}
			byMonth[m] = o
		}
		o.ClosingBalance = r.Balance
		o.Count++
		o.GrossMovement += math.Abs(r.Amount())
		o.Inflow += r.Credit
		o.Outflow += r.Debit
	}

	out := make([]MonthlyOverview, 0, len(byMonth))
	for _, m := range sortedMonths(byMonth) {
		o := *byMonth[m]
		o.GrossMovement = domain.Round2(o.GrossMovement)
		o.Inflow = domain.Round2(o.Inflow)
		o.Outflow = domain.Round2(o.Outflow)
		out = append(out, o)
	}
	return out
}

// CategoryAggregates returns flow totals per (month, category, subcategory),
// ordered by month then category then subcategory.
func CategoryAggregates(recs []domain.TransactionRecord) []CategoryAggregate {
	type key struct {
		month                 domain.MonthKey
		category, subcategory string
	}
	groups := make(map[key]*CategoryAggregate)
	for _, r := range recs {
		k := key{r.Month(), r.Category, r.Subcategory}
		g, ok := groups[k]
		if !ok {
			g = &CategoryAggregate{Month: k.month, Category: k.category, Subcategory: k.subcategory}
			groups[k] = g
		}
		g.Count++
		g.Amount += math.Abs(r.Amount())
		g.Inflow += r.Credit
		g.Outflow += r.Debit
	}

	out := make([]CategoryAggregate, 0, len(groups))
	for _, g := range groups {
		g.Amount = domain.Round2(g.Amount)
		g.Inflow = domain.Round2(g.Inflow)
		g.Outflow = domain.Round2(g.Outflow)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Month != b.Month {
			return a.Month.Before(b.Month)
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Subcategory < b.Subcategory
	})
	return out
}

// EstimateCashFlow sums salary/income credits and all debits over the whole
// statement. The totals feed SIP sizing as the monthly figures regardless of
// how many months the statement spans.
func EstimateCashFlow(recs []domain.TransactionRecord) CashFlow {
	var income, expenses float64
	for _, r := range recs {
		if r.Credit > 0 && (strings.Contains(r.Subcategory, "salary") || strings.Contains(r.Subcategory, "income")) {
			income += r.Credit
		}
		if r.Debit > 0 {
			expenses += r.Debit
		}
	}
	return CashFlow{
		MonthlyIncome:   domain.Round2(income),
		MonthlyExpenses: domain.Round2(expenses),
	}
}

func sortedMonths[V any](m map[domain.MonthKey]V) []domain.MonthKey {
	keys := make([]domain.MonthKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}
