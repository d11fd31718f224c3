// Package export turns expense records into a GnuCash-importable CSV
// document. Each record is debited against a ledger transfer account
// resolved from its expense type, with an account-based fallback.
package export

import (
	"strings"

	"kassa/internal/core"
)

// Header is the first line of every export.
const Header = "Date,Description,Amount,Transfer Account,Expense Type"

const (
	cashTransferAccount = "Assets:Cash"
	cardTransferAccount = "Assets:Card"
)

// ResolveTransferAccount picks the ledger account for one expense: the
// configured transfer account of its expense type when one is registered,
// otherwise Assets:Cash for Cash expenses and Assets:Card for everything
// else.
func ResolveTransferAccount(e core.Expense, transferByType map[string]string) string {
	if ta := transferByType[e.ExpenseType]; ta != "" {
		return ta
	}
	if e.Account == core.AccountCash {
		return cashTransferAccount
	}
	return cardTransferAccount
}

// GnuCashCSV renders the complete document in memory. Records are expected
// in export order (date descending). Description and expense type are always
// quoted with embedded quotes doubled; date, amount and transfer account are
// emitted bare.
func GnuCashCSV(expenses []core.Expense, transferByType map[string]string) string {
	var b strings.Builder
	b.WriteString(Header)

	for _, e := range expenses {
		b.WriteByte('\n')
		b.WriteString(e.Date)
		b.WriteByte(',')
		b.WriteString(quote(e.Description))
		b.WriteByte(',')
		b.WriteString(e.Amount.String())
		b.WriteByte(',')
		b.WriteString(ResolveTransferAccount(e, transferByType))
		b.WriteByte(',')
		b.WriteString(quote(e.ExpenseType))
	}

	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
