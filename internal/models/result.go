package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ImportResult reports the outcome of one import run.
type ImportResult struct {
	RunID       string                   `json:"run_id"`
	Imported    int                      `json:"imported"`
	Duplicates  int                      `json:"duplicates"`
	Errors      int                      `json:"errors"`       // rows that failed to parse
	Filtered    int                      `json:"filtered"`     // rows dropped by the date range
	WriteErrors int                      `json:"write_errors"` // accepted rows whose ledger write failed
	ByCategory  map[string]CategoryTotal `json:"by_category"`
}

// CategoryTotal aggregates the rows imported into one category.
type CategoryTotal struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// CategorySummary is one line of the per-category breakdown.
type CategorySummary struct {
	Category string
	CategoryTotal
}

// AddImported records a successfully persisted transaction.
func (r *ImportResult) AddImported(tx Transaction) {
	r.Imported++
	if r.ByCategory == nil {
		r.ByCategory = make(map[string]CategoryTotal)
	}
	total := r.ByCategory[tx.Category]
	total.Count++
	total.Amount = total.Amount.Add(tx.Amount)
	r.ByCategory[tx.Category] = total
}

// Breakdown returns the per-category totals sorted by count (descending),
// then by category name.
func (r ImportResult) Breakdown() []CategorySummary {
	out := make([]CategorySummary, 0, len(r.ByCategory))
	for name, total := range r.ByCategory {
		out = append(out, CategorySummary{Category: name, CategoryTotal: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
