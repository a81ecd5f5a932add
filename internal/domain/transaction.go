package domain

import (
	"fmt"
	"time"
)

// TransactionRecord is one normalized statement row.
// Records are produced by the statement normalizer and never mutated afterwards.
// Credit and Debit are non-negative; aggregation assumes only one of them is
// non-zero for a real-world transaction.
type TransactionRecord struct {
	Date        time.Time // calendar date, time of day is always midnight UTC
	Credit      float64   // money in
	Debit       float64   // money out
	Balance     float64   // running balance after the transaction
	Detail      string    // lower-cased, trimmed transaction detail
	Category    string    // lower-cased, trimmed
	Subcategory string    // lower-cased, trimmed
}

// Month returns the MonthKey the record belongs to.
func (r TransactionRecord) Month() MonthKey {
	return MonthOf(r.Date)
}

// Amount returns the signed movement of the record (credit minus debit).
func (r TransactionRecord) Amount() float64 {
	return r.Credit - r.Debit
}

// MonthKey is a (year, month) grouping period.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf derives the MonthKey of a date.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Before reports whether k is chronologically before other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// String formats the key as YYYY-MM.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// MarshalText renders the key as YYYY-MM so it can be used as a JSON map key.
func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a YYYY-MM key.
func (k *MonthKey) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01", string(b))
	if err != nil {
		return fmt.Errorf("MonthKey: invalid month %q: %w", string(b), err)
	}
	*k = MonthOf(t)
	return nil
}
