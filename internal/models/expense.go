package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used when comparing currency sums for equality.
var Epsilon = decimal.RequireFromString("0.001")

// Expense represents a shared expense admitted to the ledger.
// Expenses are immutable once admitted; they can only be removed.
type Expense struct {
	// ID is the sequential identifier assigned at admission.
	ID int64

	// Description is the human-readable label (e.g., "Dinner", "Groceries").
	Description string

	// Amount is the total paid, always strictly positive.
	Amount decimal.Decimal

	// Payer is the participant who paid the full amount.
	Payer Participant

	// Date is when the expense was admitted.
	Date time.Time

	// Split maps each participant to their non-negative share of Amount.
	// The shares sum to Amount within Epsilon.
	Split map[Participant]decimal.Decimal
}

// SplitTotal returns the sum of all shares in the split.
func (e Expense) SplitTotal() decimal.Decimal {
	return SumShares(e.Split)
}

// Clone returns a copy of the expense that shares no map with the original.
func (e Expense) Clone() Expense {
	split := make(map[Participant]decimal.Decimal, len(e.Split))
	for p, share := range e.Split {
		split[p] = share
	}
	e.Split = split
	return e
}

// SumShares adds up the values of a split.
func SumShares(split map[Participant]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, share := range split {
		total = total.Add(share)
	}
	return total
}

// WithinEpsilon reports whether a and b differ by at most Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}
