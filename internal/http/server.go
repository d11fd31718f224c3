// Package http exposes the expense API: record CRUD, summary views, GnuCash
// export, spreadsheet import and expense type management.
package http

import (
	"net/http"

	"kassa/internal/importer"
	"kassa/internal/log"
	"kassa/internal/services"
	"kassa/internal/storage"
)

type Server struct {
	http.Server

	repo     *storage.SQLiteRepository
	service  *services.ExpenseService
	importer *importer.Importer
	logger   *log.Logger
}

func NewServer(addr string, repo *storage.SQLiteRepository, service *services.ExpenseService, imp *importer.Importer, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:     repo,
		service:  service,
		importer: imp,
		logger:   logger.WithComponent("http"),
	}
	s.Server = http.Server{
		Addr:    addr,
		Handler: s.withLogging(mux),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/expenses/summary/by-type", s.handleSummaryByType)
	mux.HandleFunc("GET /api/expenses/summary/by-account", s.handleSummaryByAccount)
	mux.HandleFunc("GET /api/expenses/summary/total", s.handleSummaryTotal)

	mux.HandleFunc("GET /api/expenses/export/gnucash", s.handleExportGnuCash)

	mux.HandleFunc("GET /api/expenses/types", s.handleListExpenseTypes)
	mux.HandleFunc("POST /api/expenses/types", s.handleCreateExpenseType)

	mux.HandleFunc("POST /api/upload/excel", s.handleImportExcel)

	return s
}
