package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// TransactionRow is one row of the warehouse transactions table. Only the
// columns a statement needs are selected.
type TransactionRow struct {
	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount       *big.Rat `bigquery:"amount"`        // REQUIRED NUMERIC, signed: credits positive
	BalanceAfter *big.Rat `bigquery:"balance_after"` // NULLABLE NUMERIC

	RawDescription        string              `bigquery:"raw_description"`        // REQUIRED
	NormalizedDescription bigquery.NullString `bigquery:"normalized_description"` // NULLABLE

	CategoryName    bigquery.NullString `bigquery:"category_name"`    // NULLABLE
	SubcategoryName bigquery.NullString `bigquery:"subcategory_name"` // NULLABLE
}

// Description prefers the normalized description when one was stored.
func (r *TransactionRow) Description() string {
	if r.NormalizedDescription.Valid && r.NormalizedDescription.StringVal != "" {
		return r.NormalizedDescription.StringVal
	}
	return r.RawDescription
}
