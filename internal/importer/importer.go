// Package importer maps uploaded xlsx workbooks onto expense records. It
// reconciles the heterogeneous column names seen in the wild into the
// internal record shape, validates each row, and bulk-inserts the valid ones
// while collecting per-row errors.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"kassa/internal/core"
)

// ExpenseWriter is the storage port the importer inserts through.
type ExpenseWriter interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
}

const (
	defaultAccount     = core.AccountCard
	defaultExpenseType = "Other Expenses"

	// Reported row numbers are 1-based and skip the header row, so they
	// match what the user sees in their spreadsheet application.
	headerRowOffset = 2
)

// Report summarizes one import batch. Errors are ordered by row number, one
// human-readable message per failed row.
type Report struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"errors"`
	Errors   []string `json:"errorDetails"`
}

type Importer struct {
	store         ExpenseWriter
	maxConcurrent int
}

func New(store ExpenseWriter, maxConcurrent int) *Importer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Importer{store: store, maxConcurrent: maxConcurrent}
}

// Import parses the workbook, inserts every valid row for the given
// workplace, and returns once all issued inserts have settled. Inserts are
// independent: a failed insert is recorded against its row and does not
// abort the batch, and rows already inserted are not rolled back.
func (im *Importer) Import(ctx context.Context, r io.Reader, workplace string) (Report, error) {
	if strings.TrimSpace(workplace) == "" {
		return Report{}, core.ValidationError{Field: "workplace", Reason: "is required"}
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return Report{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Report{}, fmt.Errorf("workbook has no sheets")
	}
	sheet := pickSheet(sheets)

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Report{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return Report{Errors: []string{}}, nil
	}

	cols := mapColumns(rows[0])
	data := rows[1:]

	// One slot per data row; non-empty means the row failed. Keeping errors
	// in row order here makes the final report deterministic even though the
	// inserts run concurrently.
	rowErrs := make([]string, len(data))
	accepted := make([]bool, len(data))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.maxConcurrent)

	for i, row := range data {
		rowNum := i + headerRowOffset

		expense, ok := mapRow(row, cols, workplace)
		if !ok {
			rowErrs[i] = fmt.Sprintf("Row %d: Missing required fields", rowNum)
			continue
		}

		accepted[i] = true
		g.Go(func() error {
			if _, err := im.store.CreateExpense(gctx, expense); err != nil {
				rowErrs[i] = fmt.Sprintf("Row %d: %v", i+headerRowOffset, err)
			}
			return nil
		})
	}

	// Counted barrier: the report must not be assembled before every issued
	// insert has settled.
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Errors: make([]string, 0)}
	for i := range data {
		if rowErrs[i] != "" {
			report.Failed++
			report.Errors = append(report.Errors, rowErrs[i])
		} else if accepted[i] {
			report.Imported++
		}
	}

	slog.InfoContext(ctx, "Spreadsheet import finished",
		"sheet", sheet,
		"workplace", workplace,
		"imported", report.Imported,
		"failed", report.Failed)

	return report, nil
}

// pickSheet prefers the first sheet whose name contains "input" or "expense"
// (case-insensitive) and falls back to the first sheet.
func pickSheet(names []string) string {
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "input") || strings.Contains(lower, "expense") {
			return name
		}
	}
	return names[0]
}

type columnIndex struct {
	date        int
	description int
	amount      int
	account     int
	expenseType int
}

// mapColumns resolves each internal field to a header position, trying the
// primary column name first and one alias after it. A missing header leaves
// the index at -1.
func mapColumns(header []string) columnIndex {
	cols := columnIndex{date: -1, description: -1, amount: -1, account: -1, expenseType: -1}

	find := func(names ...string) int {
		for _, want := range names {
			for i, h := range header {
				if strings.TrimSpace(h) == want {
					return i
				}
			}
		}
		return -1
	}

	cols.date = find("Date", "date")
	cols.description = find("Description", "description")
	cols.amount = find("Amount", "amount")
	cols.account = find("Account", "account")
	cols.expenseType = find("Expense Type", "expense_type")
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// mapRow turns one data row into an expense. It reports ok=false when a
// required field is absent: date missing, description empty, or amount not a
// number. Account and expense type fall back to their defaults.
func mapRow(row []string, cols columnIndex, workplace string) (core.Expense, bool) {
	date := cell(row, cols.date)
	description := cell(row, cols.description)
	amount, amountErr := decimal.NewFromString(cell(row, cols.amount))

	if date == "" || description == "" || amountErr != nil {
		return core.Expense{}, false
	}

	account := cell(row, cols.account)
	if account == "" {
		account = defaultAccount
	}
	expenseType := cell(row, cols.expenseType)
	if expenseType == "" {
		expenseType = defaultExpenseType
	}

	return core.Expense{
		Date:        date,
		Description: description,
		Amount:      amount,
		Account:     account,
		ExpenseType: expenseType,
		Workplace:   workplace,
	}, true
}
