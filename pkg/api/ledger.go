// Package api defines the request and response messages of the splitledger
// Connect services. Messages travel as JSON; amounts are decimal strings.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Share is one participant's part of an expense.
type Share struct {
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

// Expense is an admitted expense. Split is in participant order.
type Expense struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Payer       string          `json:"payer"`
	Date        time.Time       `json:"date"`
	Split       []Share         `json:"split"`
}

// MemberBalance is one participant's position across all expenses.
// Net is positive when the participant is owed money.
type MemberBalance struct {
	Participant string          `json:"participant"`
	Net         decimal.Decimal `json:"net"`
	Paid        decimal.Decimal `json:"paid"`
	Owed        decimal.Decimal `json:"owed"`
}

// Transfer is a suggested settle-up payment.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// PendingDelete describes the expense awaiting delete confirmation.
type PendingDelete struct {
	ExpenseID int64     `json:"expenseId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Delete statuses returned by RequestDelete.
const (
	DeleteStatusPending = "pending_delete"
	DeleteStatusRemoved = "removed"
)

type ListParticipantsRequest struct{}

type ListParticipantsResponse struct {
	Participants []string `json:"participants"`
}

// AddExpenseRequest submits a new expense. A participant missing from Split,
// or mapped to null, counts as unspecified, which is different from a zero
// share.
type AddExpenseRequest struct {
	Description string                         `json:"description"`
	Amount      decimal.NullDecimal            `json:"amount"`
	Payer       string                         `json:"payer"`
	Split       map[string]decimal.NullDecimal `json:"split"`
}

type AddExpenseResponse struct {
	Expense  Expense         `json:"expense"`
	Balances []MemberBalance `json:"balances"`
}

type ListExpensesRequest struct{}

type ListExpensesResponse struct {
	Expenses []Expense     `json:"expenses"`
	Pending  *PendingDelete `json:"pending,omitempty"`
}

type GetBalancesRequest struct{}

type GetBalancesResponse struct {
	Balances  []MemberBalance `json:"balances"`
	Transfers []Transfer      `json:"transfers"`
}

type CalculateEvenSplitRequest struct {
	Amount decimal.NullDecimal `json:"amount"`
}

type CalculateEvenSplitResponse struct {
	Split []Share `json:"split"`
}

type RequestDeleteRequest struct {
	ExpenseID int64 `json:"expenseId"`
}

type RequestDeleteResponse struct {
	Status    string     `json:"status"`
	Expense   Expense    `json:"expense"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Notice    string     `json:"notice,omitempty"`
}

type CancelDeleteRequest struct{}

type CancelDeleteResponse struct {
	Cancelled bool `json:"cancelled"`
}
