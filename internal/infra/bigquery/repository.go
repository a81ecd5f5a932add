package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// TransactionRepository reads warehouse transactions with a shared client.
type TransactionRepository struct {
	client *bigquery.Client
}

// NewTransactionRepository creates a repository bound to projectID.
func NewTransactionRepository(ctx context.Context, projectID string) (*TransactionRepository, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewTransactionRepository: project ID is required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewTransactionRepository: creating client: %w", err)
	}
	return &TransactionRepository{client: client}, nil
}

// Close closes the BigQuery client connection.
func (r *TransactionRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// TransactionsByDateRange delegates to QueryTransactionsByDateRangeWithClient.
func (r *TransactionRepository) TransactionsByDateRange(ctx context.Context, ref TableRef, start, end time.Time) ([]*TransactionRow, error) {
	return QueryTransactionsByDateRangeWithClient(ctx, r.client, ref, start, end)
}
