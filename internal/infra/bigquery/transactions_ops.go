package bigquery

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const dateFormat = "2006-01-02"

// maxIdentifierLen is the longest dataset or table name BigQuery accepts.
const maxIdentifierLen = 1024

// identifierPattern restricts dataset and table names interpolated into SQL.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validIdentifier(name string) bool {
	return len(name) <= maxIdentifierLen && identifierPattern.MatchString(name)
}

// TableRef names a transactions table inside the client's project.
type TableRef struct {
	Dataset string
	Table   string
}

func (t TableRef) validate() error {
	if !validIdentifier(t.Dataset) {
		return fmt.Errorf("invalid dataset name %q", t.Dataset)
	}
	if !validIdentifier(t.Table) {
		return fmt.Errorf("invalid table name %q", t.Table)
	}
	return nil
}

func (t TableRef) String() string {
	return t.Dataset + "." + t.Table
}

// QueryTransactionsByDateRange queries transactions within the specified date range.
func QueryTransactionsByDateRange(ctx context.Context, projectID string, ref TableRef, startDate, endDate time.Time) ([]*TransactionRow, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: bigquery client: %w", err)
	}
	defer client.Close()

	return QueryTransactionsByDateRangeWithClient(ctx, client, ref, startDate, endDate)
}

// QueryTransactionsByDateRangeWithClient queries transactions within the
// specified date range (inclusive) using the provided BigQuery client.
func QueryTransactionsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, ref TableRef, startDate, endDate time.Time) ([]*TransactionRow, error) {
	if err := ref.validate(); err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: %w", err)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: end date %s before start date %s",
			endDate.Format(dateFormat), startDate.Format(dateFormat))
	}

	q := client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_date,
			t.amount,
			t.balance_after,
			t.raw_description,
			t.normalized_description,
			t.category_name,
			t.subcategory_name
		FROM %s t
		WHERE t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		ORDER BY t.transaction_date
	`, "`"+ref.String()+"`"))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate.Format(dateFormat)},
		{Name: "end_date", Value: endDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
