package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"kassa/internal/core"
)

var decimalCmp = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedExpenses() []core.Expense {
	return []core.Expense{
		{Date: "2024-01-01", Description: "Rent", Amount: amount("1000"), Account: core.AccountCard, ExpenseType: "Rent"},
		{Date: "2024-01-02", Description: "Ice", Amount: amount("50"), Account: core.AccountCash, ExpenseType: "Ingridients"},
		{Date: "2024-01-03", Description: "Soda", Amount: amount("30"), Account: core.AccountCard, ExpenseType: "Drinks"},
	}
}

func TestByAccount(t *testing.T) {
	got := ByAccount(seedExpenses())
	want := []GroupTotal{
		{Key: "Card", Total: amount("1030"), Count: 2},
		{Key: "Cash", Total: amount("50"), Count: 1},
	}
	if diff := cmp.Diff(want, got, decimalCmp); diff != "" {
		t.Errorf("ByAccount mismatch (-want +got):\n%s", diff)
	}
}

func TestByType(t *testing.T) {
	got := ByType(seedExpenses())
	want := []GroupTotal{
		{Key: "Rent", Total: amount("1000"), Count: 1},
		{Key: "Ingridients", Total: amount("50"), Count: 1},
		{Key: "Drinks", Total: amount("30"), Count: 1},
	}
	if diff := cmp.Diff(want, got, decimalCmp); diff != "" {
		t.Errorf("ByType mismatch (-want +got):\n%s", diff)
	}
}

func TestTotal(t *testing.T) {
	got := Total(seedExpenses())
	if !got.GrandTotal.Equal(amount("1080")) {
		t.Errorf("grand total = %s, want 1080", got.GrandTotal)
	}
	if got.Count != 3 {
		t.Errorf("count = %d, want 3", got.Count)
	}
}

func TestEmptySetYieldsExplicitZeros(t *testing.T) {
	got := Total(nil)
	if !got.GrandTotal.Equal(decimal.Zero) {
		t.Errorf("grand total = %s, want 0", got.GrandTotal)
	}
	if got.Count != 0 {
		t.Errorf("count = %d, want 0", got.Count)
	}

	if groups := ByType(nil); len(groups) != 0 {
		t.Errorf("ByType(nil) = %v, want empty", groups)
	}
}

// The grand total count must equal the sum of per-group counts, for either
// grouping dimension.
func TestGroupCountsSumToTotal(t *testing.T) {
	expenses := seedExpenses()
	total := Total(expenses)

	for name, groups := range map[string][]GroupTotal{
		"by type":    ByType(expenses),
		"by account": ByAccount(expenses),
	} {
		var sum int64
		for _, g := range groups {
			sum += g.Count
		}
		if sum != total.Count {
			t.Errorf("%s: group counts sum to %d, total count is %d", name, sum, total.Count)
		}
	}
}

func TestDecimalSumsAreExact(t *testing.T) {
	expenses := []core.Expense{
		{Account: core.AccountCard, Amount: amount("0.10")},
		{Account: core.AccountCard, Amount: amount("0.20")},
	}
	got := ByAccount(expenses)
	if len(got) != 1 || !got[0].Total.Equal(amount("0.30")) {
		t.Errorf("ByAccount = %v, want single Card group totalling 0.30", got)
	}
}

func TestTiesKeepFirstAppearanceOrder(t *testing.T) {
	expenses := []core.Expense{
		{Account: "Cash", Amount: amount("10")},
		{Account: "Card", Amount: amount("10")},
	}
	got := ByAccount(expenses)
	want := []GroupTotal{
		{Key: "Cash", Total: amount("10"), Count: 1},
		{Key: "Card", Total: amount("10"), Count: 1},
	}
	if diff := cmp.Diff(want, got, decimalCmp); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}
