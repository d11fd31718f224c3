package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"kassa/internal/core"
	"kassa/internal/export"
	"kassa/internal/report"
)

const maxUploadBytes = 10 << 20 // 10 MiB

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.ListExpenses(r.Context(), filterFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	expense, err := s.repo.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// expenseRequest is the create/update payload. Amount accepts both a JSON
// number and a numeric string.
type expenseRequest struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Account     string          `json:"account"`
	ExpenseType string          `json:"expense_type"`
	Workplace   string          `json:"workplace"`
}

func (req expenseRequest) toExpense() core.Expense {
	return core.Expense{
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		Account:     req.Account,
		ExpenseType: req.ExpenseType,
		Workplace:   req.Workplace,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}

	created, err := s.service.CreateExpense(r.Context(), req.toExpense())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}

	expense := req.toExpense()
	expense.ID = id

	updated, err := s.service.UpdateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// summaryFilter ignores the expenseType dimension: summaries are grouped, not
// type-filtered.
func summaryFilter(r *http.Request) core.Filter {
	f := filterFromQuery(r.URL.Query())
	f.ExpenseType = ""
	return f
}

func (s *Server) handleSummaryByType(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.ListExpenses(r.Context(), summaryFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.ByType(expenses))
}

func (s *Server) handleSummaryByAccount(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.ListExpenses(r.Context(), summaryFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.ByAccount(expenses))
}

func (s *Server) handleSummaryTotal(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.repo.ListExpenses(r.Context(), summaryFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Total(expenses))
}

func (s *Server) handleExportGnuCash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := core.Filter{Workplace: r.URL.Query().Get("workplace")}

	expenses, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	transfers, err := s.repo.TransferAccounts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	doc := export.GnuCashCSV(expenses, transfers)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=gnucash_export.csv")
	w.Write([]byte(doc))
}

func (s *Server) handleListExpenseTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.repo.ListExpenseTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleCreateExpenseType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		TransferAccount string `json:"transfer_account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}

	t := core.ExpenseType{Name: req.Name, TransferAccount: req.TransferAccount}
	if t.TransferAccount == "" {
		t.TransferAccount = "Assets:Card"
	}
	if err := t.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.repo.CreateExpenseType(r.Context(), t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleImportExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, core.ValidationError{Field: "file", Reason: "upload too large or malformed"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, core.ValidationError{Field: "file", Reason: "is required"})
		return
	}
	defer file.Close()

	result, err := s.importer.Import(r.Context(), file, r.FormValue("workplace"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
