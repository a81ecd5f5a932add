package statement

import (
	"errors"
	"fmt"
	"strings"
)

// MissingColumnsError reports required columns absent from the statement header.
type MissingColumnsError struct {
	Missing []string // canonical names of the absent columns
	Found   []string // normalized names of the columns that were present
}

// Limits on how much of the found header the message repeats.
const (
	maxReportedColumns   = 20
	maxReportedColumnLen = 32
)

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("statement missing required columns: [%s]. Found columns: [%s]",
		strings.Join(e.Missing, ", "), strings.Join(clipColumns(e.Found), ", "))
}

func clipColumns(cols []string) []string {
	out := make([]string, 0, min(len(cols), maxReportedColumns)+1)
	for i, c := range cols {
		if i == maxReportedColumns {
			out = append(out, fmt.Sprintf("... %d more", len(cols)-maxReportedColumns))
			break
		}
		if r := []rune(c); len(r) > maxReportedColumnLen {
			c = string(r[:maxReportedColumnLen]) + "..."
		}
		out = append(out, c)
	}
	return out
}

// DateParseError reports a date column in which no value could be parsed.
type DateParseError struct {
	Column string
	Sample string // first non-empty value seen, for the error message
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("column %q contains no parseable dates (first value %q)", e.Column, e.Sample)
}

// IsValidationError reports whether err is an input validation failure:
// missing columns, an unparseable date column, or an empty statement.
func IsValidationError(err error) bool {
	var missing *MissingColumnsError
	var date *DateParseError
	return errors.As(err, &missing) || errors.As(err, &date) || errors.Is(err, ErrEmptyStatement)
}
