package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"kassa/internal/core"
)

// filterFromQuery builds filter criteria from query parameters. Values are
// passed through verbatim; a malformed date simply matches nothing.
func filterFromQuery(q url.Values) core.Filter {
	return core.Filter{
		Workplace:   q.Get("workplace"),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
		ExpenseType: q.Get("expenseType"),
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, core.ValidationError{Field: "id", Reason: "must be an integer"}
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError translates the core error taxonomy into a structured failure
// response.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var (
		validation core.ValidationError
		conflict   core.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &conflict):
		status = http.StatusConflict
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
