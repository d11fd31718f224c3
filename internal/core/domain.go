package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Accounts an expense can be paid from.
const (
	AccountCash = "Cash"
	AccountCard = "Card"
)

type (
	// Expense is a single business expense record. ID and CreatedAt are
	// assigned by the store and immutable afterwards.
	Expense struct {
		ID          int64           `json:"id"`
		Date        string          `json:"date"` // canonical YYYY-MM-DD
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Account     string          `json:"account"`
		ExpenseType string          `json:"expense_type"`
		Workplace   string          `json:"workplace"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	// ExpenseType is a named category. TransferAccount is the ledger account
	// used at export time; empty means unset and the exporter falls back to
	// an account-based default.
	ExpenseType struct {
		ID              int64     `json:"id"`
		Name            string    `json:"name"`
		TransferAccount string    `json:"transfer_account,omitempty"`
		CreatedAt       time.Time `json:"created_at"`
	}

	// Filter restricts an expense query. An empty field means no restriction
	// on that dimension; non-empty fields combine conjunctively. Date bounds
	// are inclusive and compared lexicographically against the canonical
	// YYYY-MM-DD representation, so callers own date validation.
	Filter struct {
		Workplace   string
		StartDate   string
		EndDate     string
		ExpenseType string
	}
)

// DateLayout is the canonical calendar-date representation used throughout
// the system, in storage and on the wire.
const DateLayout = "2006-01-02"

// ValidateDate checks that s is a real calendar date in canonical form.
func ValidateDate(s string) error {
	if s == "" {
		return ValidationError{Field: "date", Reason: "is required"}
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	return nil
}

// Validate checks the caller-supplied fields of an expense. ID and CreatedAt
// are store-assigned and not inspected.
func (e Expense) Validate() error {
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if e.Amount.IsNegative() {
		return ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if strings.TrimSpace(e.Account) == "" {
		return ValidationError{Field: "account", Reason: "is required"}
	}
	if strings.TrimSpace(e.ExpenseType) == "" {
		return ValidationError{Field: "expense_type", Reason: "is required"}
	}
	if strings.TrimSpace(e.Workplace) == "" {
		return ValidationError{Field: "workplace", Reason: "is required"}
	}
	return nil
}

// Validate checks an expense type prior to registration.
func (t ExpenseType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}
