package statement

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// Canonical column names.
const (
	ColumnDate        = "date"
	ColumnCredit      = "credit"
	ColumnDebit       = "debit"
	ColumnBalance     = "balance"
	ColumnDetail      = "detail"
	ColumnCategory    = "category"
	ColumnSubcategory = "subcategory"
)

// RequiredColumns lists every canonical column a statement must provide.
var RequiredColumns = []string{
	ColumnDate, ColumnCredit, ColumnDebit, ColumnBalance,
	ColumnDetail, ColumnCategory, ColumnSubcategory,
}

// Options controls column aliasing and date parsing.
type Options struct {
	// Aliases maps a normalized header name onto a canonical column name.
	Aliases map[string]string

	// DateLayouts are tried in order for every date cell.
	DateLayouts []string
}

// DefaultOptions returns the aliases and date layouts used for Indian bank exports.
func DefaultOptions() Options {
	return Options{
		Aliases: map[string]string{
			"transaction detail":  ColumnDetail,
			"transaction details": ColumnDetail,
			"description":         ColumnDetail,
			"narration":           ColumnDetail,
			"particulars":         ColumnDetail,
			"sub category":        ColumnSubcategory,
			"sub-category":        ColumnSubcategory,
			"transaction date":    ColumnDate,
			"txn date":            ColumnDate,
		},
		DateLayouts: []string{
			"2006-01-02",
			"2006-01-02 15:04:05",
			time.RFC3339,
			"02/01/2006",
			"02-01-2006",
			"02.01.2006",
			"2006/01/02",
			"02-Jan-2006",
			"02 Jan 2006",
			"2 Jan 2006",
			"Jan 2, 2006",
			"02/01/06",
		},
	}
}

// Normalize validates the table header and converts every row into a
// TransactionRecord.
//
// Numeric cells that cannot be parsed become zero. Rows whose date cannot be
// parsed are dropped; if no row has a parseable date the whole statement is
// rejected with a DateParseError. Records are returned in chronological order,
// keeping file order for rows on the same day.
func Normalize(t *Table, opts Options) ([]domain.TransactionRecord, error) {
	if t == nil {
		return nil, fmt.Errorf("Normalize: %w", ErrEmptyStatement)
	}

	index, found := columnIndex(t.Header, opts.Aliases)

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Found: found}
	}

	records := make([]domain.TransactionRecord, 0, len(t.Rows))
	var firstDate string
	for _, row := range t.Rows {
		rawDate := strings.TrimSpace(cell(row, index[ColumnDate]))
		if firstDate == "" {
			firstDate = rawDate
		}

		date, ok := parseDate(rawDate, opts.DateLayouts)
		if !ok {
			continue
		}

		records = append(records, domain.TransactionRecord{
			Date:        date,
			Credit:      ParseAmount(cell(row, index[ColumnCredit])).Abs().InexactFloat64(),
			Debit:       ParseAmount(cell(row, index[ColumnDebit])).Abs().InexactFloat64(),
			Balance:     ParseAmount(cell(row, index[ColumnBalance])).InexactFloat64(),
			Detail:      normalizeText(cell(row, index[ColumnDetail])),
			Category:    normalizeText(cell(row, index[ColumnCategory])),
			Subcategory: normalizeText(cell(row, index[ColumnSubcategory])),
		})
	}

	if len(records) == 0 && len(t.Rows) > 0 {
		return nil, &DateParseError{Column: ColumnDate, Sample: firstDate}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	return records, nil
}

// ParseAmount leniently parses a numeric cell. Thousands separators, currency
// markers and Dr/Cr suffixes are ignored; anything still unparseable is zero.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero
	}

	s = strings.NewReplacer(
		",", "",
		"₹", "",
		"inr", "",
		"rs.", "",
		"cr", "",
		"dr", "",
		" ", "",
	).Replace(s)

	// Accounting negatives: (1234.50)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.Trim(s, "()")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func columnIndex(header []string, aliases map[string]string) (map[string]int, []string) {
	index := make(map[string]int, len(header))
	found := make([]string, 0, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		found = append(found, name)
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return index, found
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseDate(raw string, layouts []string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
