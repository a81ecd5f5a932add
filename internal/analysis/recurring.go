package analysis

import (
	"sort"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// MinRecurringMonths is exclusive: a detail must appear in more than this
// many distinct months to count as recurring.
const MinRecurringMonths = 2

// RecurringDetection finds transaction details seen in more than
// MinRecurringMonths distinct months and reports, for each month a detail
// occurs in, its count and the percent change from the detail's previous
// occurrence month. Entries are ordered by detail then month.
func RecurringDetection(recs []domain.TransactionRecord) []RecurringEntry {
	counts := make(map[string]map[domain.MonthKey]int)
	for _, r := range recs {
		byMonth, ok := counts[r.Detail]
		if !ok {
			byMonth = make(map[domain.MonthKey]int)
			counts[r.Detail] = byMonth
		}
		byMonth[r.Month()]++
	}

	details := make([]string, 0, len(counts))
	for d, byMonth := range counts {
		if len(byMonth) > MinRecurringMonths {
			details = append(details, d)
		}
	}
	sort.Strings(details)

	var entries []RecurringEntry
	for _, d := range details {
		var prev *int
		for _, m := range sortedMonths(counts[d]) {
			count := counts[d][m]
			entry := RecurringEntry{Detail: d, Month: m, Count: count}
			if prev != nil {
				p := *prev
				entry.PrevCount = &p
				entry.PctChange = pctChange(float64(count), float64(p))
			}
			entries = append(entries, entry)
			c := count
			prev = &c
		}
	}
	return entries
}

// pctChange returns nil when prev is zero.
func pctChange(cur, prev float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := domain.Round2((cur - prev) / prev * 100)
	return &v
}
