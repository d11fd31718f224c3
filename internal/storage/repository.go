// Package storage implements the SQLite record store for expenses and
// expense types. The repository is constructed with an open, migrated and
// seeded database or not at all; components receive the handle at
// construction time and never see an uninitialized store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"kassa/internal/core"
)

// DefaultExpenseTypes is the fixed set seeded at startup, with the ledger
// transfer accounts used by the GnuCash export.
var DefaultExpenseTypes = []core.ExpenseType{
	{Name: "Drinks(Cola,Hell,Dreher)", TransferAccount: "Assets:Card"},
	{Name: "Salaries", TransferAccount: "Assets:Cash"},
	{Name: "Personal Cash outs", TransferAccount: "Assets:Cash"},
	{Name: "Other Expenses", TransferAccount: "Assets:Card"},
	{Name: "Taxes", TransferAccount: "Assets:Card"},
	{Name: "Rent", TransferAccount: "Assets:Card"},
	{Name: "Utilities", TransferAccount: "Assets:Card"},
	{Name: "Ingridients", TransferAccount: "Assets:Card"},
}

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at dbPath, runs migrations and seeds
// the default expense types. Any failure is returned to the caller, which is
// expected to treat it as fatal at startup.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db}

	if err := repo.SeedDefaultTypes(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed default expense types: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SeedDefaultTypes inserts the default expense types. The insert is guarded
// by the unique name key, so re-running it is a no-op.
func (r *SQLiteRepository) SeedDefaultTypes(ctx context.Context) error {
	stmt, err := r.db.PrepareContext(ctx,
		`INSERT OR IGNORE INTO expense_types (name, transfer_account) VALUES (?, ?)`)
	if err != nil {
		return &core.StoreError{Op: "prepare seed statement", Err: err}
	}
	defer stmt.Close()

	for _, t := range DefaultExpenseTypes {
		if _, err := stmt.ExecContext(ctx, t.Name, t.TransferAccount); err != nil {
			return &core.StoreError{Op: fmt.Sprintf("seed expense type %q", t.Name), Err: err}
		}
	}
	return nil
}

const expenseColumns = `id, date, description, amount, account, expense_type, workplace, created_at`

// ListExpenses returns the records matching the filter, newest date first,
// then newest creation time.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, f core.Filter) ([]core.Expense, error) {
	clause, params := FilterClause(f)
	query := `SELECT ` + expenseColumns + ` FROM expenses` + clause +
		` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, &core.StoreError{Op: "list expenses", Err: err}
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, &core.StoreError{Op: "scan expense", Err: err}
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "list expenses", Err: err}
	}

	return expenses, nil
}

// GetExpense returns a single record by id.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, &core.StoreError{Op: "get expense", Err: err}
	}
	return e, nil
}

// CreateExpense inserts a new record and returns it with the store-assigned
// id and creation timestamp.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, description, amount, account, expense_type, workplace)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Date, e.Description, e.Amount.String(), e.Account, e.ExpenseType, e.Workplace)
	if err != nil {
		return core.Expense{}, &core.StoreError{Op: "create expense", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, &core.StoreError{Op: "create expense: last insert id", Err: err}
	}

	return r.GetExpense(ctx, id)
}

// UpdateExpense replaces every caller-supplied field of the record with
// matching id. ID and creation timestamp are immutable.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET date = ?, description = ?, amount = ?, account = ?, expense_type = ?, workplace = ?
		 WHERE id = ?`,
		e.Date, e.Description, e.Amount.String(), e.Account, e.ExpenseType, e.Workplace, e.ID)
	if err != nil {
		return &core.StoreError{Op: "update expense", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &core.StoreError{Op: "update expense: rows affected", Err: err}
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteExpense removes the record permanently.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return &core.StoreError{Op: "delete expense", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &core.StoreError{Op: "delete expense: rows affected", Err: err}
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// ListExpenseTypes returns all registered types ordered by name.
func (r *SQLiteRepository) ListExpenseTypes(ctx context.Context) ([]core.ExpenseType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, transfer_account, created_at FROM expense_types ORDER BY name`)
	if err != nil {
		return nil, &core.StoreError{Op: "list expense types", Err: err}
	}
	defer rows.Close()

	types := make([]core.ExpenseType, 0)
	for rows.Next() {
		var (
			t        core.ExpenseType
			transfer sql.NullString
			created  sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Name, &transfer, &created); err != nil {
			return nil, &core.StoreError{Op: "scan expense type", Err: err}
		}
		t.TransferAccount = transfer.String
		t.CreatedAt = created.Time
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "list expense types", Err: err}
	}

	return types, nil
}

// CreateExpenseType registers a new type. A duplicate name surfaces as a
// ConflictError, which is recoverable.
func (r *SQLiteRepository) CreateExpenseType(ctx context.Context, t core.ExpenseType) (core.ExpenseType, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_types (name, transfer_account) VALUES (?, ?)`,
		t.Name, t.TransferAccount)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return core.ExpenseType{}, core.ConflictError{Resource: "expense type", Key: t.Name}
		}
		return core.ExpenseType{}, &core.StoreError{Op: "create expense type", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.ExpenseType{}, &core.StoreError{Op: "create expense type: last insert id", Err: err}
	}
	t.ID = id
	return t, nil
}

// TransferAccounts returns the type-name to transfer-account mapping used by
// the export transformer. Types with no configured transfer account are
// omitted so the exporter's fallback applies.
func (r *SQLiteRepository) TransferAccounts(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, transfer_account FROM expense_types
		 WHERE transfer_account IS NOT NULL AND transfer_account != ''`)
	if err != nil {
		return nil, &core.StoreError{Op: "load transfer accounts", Err: err}
	}
	defer rows.Close()

	accounts := make(map[string]string)
	for rows.Next() {
		var name, transfer string
		if err := rows.Scan(&name, &transfer); err != nil {
			return nil, &core.StoreError{Op: "scan transfer account", Err: err}
		}
		accounts[name] = transfer
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "load transfer accounts", Err: err}
	}

	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		amount  string
		created sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.Date, &e.Description, &amount, &e.Account,
		&e.ExpenseType, &e.Workplace, &created); err != nil {
		return core.Expense{}, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	e.Amount = d
	e.CreatedAt = created.Time
	return e, nil
}
