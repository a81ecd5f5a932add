package bigquery

import (
	"math/big"

	"github.com/dvloznov/statement-insights/internal/statement"
)

// ToTable lays warehouse rows out under the canonical statement header so
// they go through the same normalization as an uploaded CSV. The signed
// amount is split into credit and debit columns.
func ToTable(rows []*TransactionRow) *statement.Table {
	t := &statement.Table{
		Header: append([]string(nil), statement.RequiredColumns...),
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		if r == nil {
			continue
		}
		var credit, debit string
		if r.Amount != nil {
			switch r.Amount.Sign() {
			case 1:
				credit = ratString(r.Amount)
			case -1:
				debit = ratString(new(big.Rat).Neg(r.Amount))
			}
		}
		t.Rows = append(t.Rows, []string{
			r.TransactionDate.String(),
			credit,
			debit,
			ratString(r.BalanceAfter),
			r.Description(),
			r.CategoryName.StringVal,
			r.SubcategoryName.StringVal,
		})
	}
	return t
}

func ratString(r *big.Rat) string {
	if r == nil {
		return ""
	}
	return r.FloatString(2)
}
