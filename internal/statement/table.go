package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is a raw statement export: a header row and string-typed cells.
// Column names may use any casing or surrounding whitespace.
type Table struct {
	Header []string
	Rows   [][]string
}

// ErrEmptyStatement is returned when the input has no header row.
var ErrEmptyStatement = errors.New("statement is empty")

// ReadCSV reads a comma-separated statement export into a Table.
// Rows may be ragged; missing trailing cells are treated as empty.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: reading records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ReadCSV: %w", ErrEmptyStatement)
	}

	header := records[0]
	if len(header) > 0 {
		// Excel exports prefix the first header with a UTF-8 byte order mark.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, rec)
	}

	return &Table{Header: header, Rows: rows}, nil
}

// WriteCSV writes the table back out as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("WriteCSV: writing header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("WriteCSV: writing rows: %w", err)
	}
	return nil
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
