package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"kassa/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kassa.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testExpense(date, description, amount, account, expenseType string) core.Expense {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return core.Expense{
		Date:        date,
		Description: description,
		Amount:      d,
		Account:     account,
		ExpenseType: expenseType,
		Workplace:   "Downtown",
	}
}

func TestCreateAndGetExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense("2024-01-01", "Rent", "1000", "Card", "Rent"))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if created.ID == 0 {
		t.Error("created expense should have a store-assigned id")
	}
	if created.CreatedAt.IsZero() {
		t.Error("created expense should have a store-assigned creation timestamp")
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Description != "Rent" || !got.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("got %+v, want the created record back", got)
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetExpense(context.Background(), 9999)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("GetExpense(missing) = %v, want ErrNotFound", err)
	}
}

func TestListExpensesFilteredAndOrdered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Expense{
		testExpense("2024-01-01", "Rent", "1000", "Card", "Rent"),
		testExpense("2024-01-02", "Ice", "50", "Cash", "Ingridients"),
		testExpense("2024-01-03", "Soda", "30", "Card", "Drinks"),
	}
	for _, e := range seed {
		if _, err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	other := testExpense("2024-01-02", "Napkins", "5", "Cash", "Other Expenses")
	other.Workplace = "Harbour"
	if _, err := repo.CreateExpense(ctx, other); err != nil {
		t.Fatalf("seed other workplace: %v", err)
	}

	all, err := repo.ListExpenses(ctx, core.Filter{Workplace: "Downtown"})
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d expenses, want 3", len(all))
	}
	// Newest date first.
	if all[0].Date != "2024-01-03" || all[2].Date != "2024-01-01" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].Date, all[1].Date, all[2].Date)
	}

	ranged, err := repo.ListExpenses(ctx, core.Filter{
		Workplace: "Downtown",
		StartDate: "2024-01-02",
		EndDate:   "2024-01-02",
	})
	if err != nil {
		t.Fatalf("ListExpenses(range): %v", err)
	}
	if len(ranged) != 1 || ranged[0].Description != "Ice" {
		t.Errorf("inclusive range: got %+v, want exactly the Ice record", ranged)
	}

	byType, err := repo.ListExpenses(ctx, core.Filter{ExpenseType: "Drinks"})
	if err != nil {
		t.Fatalf("ListExpenses(type): %v", err)
	}
	if len(byType) != 1 || byType[0].Description != "Soda" {
		t.Errorf("type filter: got %+v, want exactly the Soda record", byType)
	}

	none, err := repo.ListExpenses(ctx, core.Filter{StartDate: "not-a-date"})
	if err != nil {
		t.Fatalf("ListExpenses(malformed): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("malformed filter value should match nothing, got %d rows", len(none))
	}
}

func TestUpdateExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense("2024-01-01", "Rent", "1000", "Card", "Rent"))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	created.Description = "January rent"
	created.Amount = decimal.NewFromInt(1100)
	if err := repo.UpdateExpense(ctx, created); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Description != "January rent" || !got.Amount.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("update not applied: %+v", got)
	}

	missing := created
	missing.ID = 9999
	if err := repo.UpdateExpense(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateExpense(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense("2024-01-01", "Rent", "1000", "Card", "Rent"))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("deleted record still readable: %v", err)
	}
	if err := repo.DeleteExpense(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteExpense(missing) = %v, want ErrNotFound", err)
	}
}

func TestSeedDefaultTypesIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// The constructor already seeded once; seed again explicitly.
	if err := repo.SeedDefaultTypes(ctx); err != nil {
		t.Fatalf("SeedDefaultTypes: %v", err)
	}

	types, err := repo.ListExpenseTypes(ctx)
	if err != nil {
		t.Fatalf("ListExpenseTypes: %v", err)
	}
	if len(types) != len(DefaultExpenseTypes) {
		t.Fatalf("got %d types, want %d", len(types), len(DefaultExpenseTypes))
	}

	seen := make(map[string]int)
	for _, typ := range types {
		seen[typ.Name]++
	}
	for _, def := range DefaultExpenseTypes {
		if seen[def.Name] != 1 {
			t.Errorf("type %q seeded %d times, want exactly once", def.Name, seen[def.Name])
		}
	}
}

func TestCreateExpenseTypeConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpenseType(ctx, core.ExpenseType{Name: "Marketing", TransferAccount: "Assets:Card"})
	if err != nil {
		t.Fatalf("CreateExpenseType: %v", err)
	}
	if created.ID == 0 {
		t.Error("created type should have a store-assigned id")
	}

	_, err = repo.CreateExpenseType(ctx, core.ExpenseType{Name: "Marketing"})
	var conflict core.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("duplicate name = %v, want ConflictError", err)
	}
	if conflict.Key != "Marketing" {
		t.Errorf("conflict key = %q, want Marketing", conflict.Key)
	}
}

func TestTransferAccounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateExpenseType(ctx, core.ExpenseType{Name: "Uncategorized"}); err != nil {
		t.Fatalf("CreateExpenseType: %v", err)
	}

	accounts, err := repo.TransferAccounts(ctx)
	if err != nil {
		t.Fatalf("TransferAccounts: %v", err)
	}

	if got := accounts["Salaries"]; got != "Assets:Cash" {
		t.Errorf("Salaries transfer account = %q, want Assets:Cash", got)
	}
	if _, ok := accounts["Uncategorized"]; ok {
		t.Error("type without transfer account should be omitted from the map")
	}
}

func TestAmountsRoundTripExactly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense("2024-02-01", "Coffee beans", "19.99", "Card", "Ingridients"))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Amount.String() != "19.99" {
		t.Errorf("amount round-trip = %s, want 19.99", got.Amount)
	}
}
