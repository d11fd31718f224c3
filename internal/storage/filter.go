package storage

import "kassa/internal/core"

// FilterClause builds the WHERE fragment and bound parameters selecting
// expenses that match the conjunction of the supplied criteria. Empty
// criteria are skipped; values are never parsed or rejected here, a
// malformed date simply matches nothing. Date bounds are inclusive and rely
// on the lexicographic ordering of the canonical YYYY-MM-DD form.
func FilterClause(f core.Filter) (string, []any) {
	clause := " WHERE 1=1"
	var params []any

	if f.Workplace != "" {
		clause += " AND workplace = ?"
		params = append(params, f.Workplace)
	}
	if f.StartDate != "" {
		clause += " AND date >= ?"
		params = append(params, f.StartDate)
	}
	if f.EndDate != "" {
		clause += " AND date <= ?"
		params = append(params, f.EndDate)
	}
	if f.ExpenseType != "" {
		clause += " AND expense_type = ?"
		params = append(params, f.ExpenseType)
	}

	return clause, params
}
