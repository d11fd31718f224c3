// Package report computes the aggregate views served by the summary
// endpoints: grouped totals by expense type or account, and the grand total.
// Amounts are summed with decimal arithmetic over the already-filtered record
// set, so the results are exact regardless of how the store represents them.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"kassa/internal/core"
)

// GroupTotal is one row of a grouped summary.
type GroupTotal struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total_amount"`
	Count int64           `json:"count"`
}

// Summary is the grand total over a filtered set. A zero-row set yields
// explicit zeros, never nulls.
type Summary struct {
	GrandTotal decimal.Decimal `json:"grand_total"`
	Count      int64           `json:"total_count"`
}

// ByType groups expenses by expense type, descending by total amount.
func ByType(expenses []core.Expense) []GroupTotal {
	return groupBy(expenses, func(e core.Expense) string { return e.ExpenseType })
}

// ByAccount groups expenses by account, descending by total amount.
func ByAccount(expenses []core.Expense) []GroupTotal {
	return groupBy(expenses, func(e core.Expense) string { return e.Account })
}

// Total sums the whole set.
func Total(expenses []core.Expense) Summary {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return Summary{GrandTotal: sum, Count: int64(len(expenses))}
}

func groupBy(expenses []core.Expense, key func(core.Expense) string) []GroupTotal {
	totals := make(map[string]*GroupTotal)
	order := make([]string, 0)

	for _, e := range expenses {
		k := key(e)
		g, ok := totals[k]
		if !ok {
			g = &GroupTotal{Key: k, Total: decimal.Zero}
			totals[k] = g
			order = append(order, k)
		}
		g.Total = g.Total.Add(e.Amount)
		g.Count++
	}

	out := make([]GroupTotal, 0, len(order))
	for _, k := range order {
		out = append(out, *totals[k])
	}
	// Ties keep first-appearance order, which is stable within one query
	// execution.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}
