package ledger

import (
	"errors"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// DefaultDeleteWindow is how long a delete request waits for confirmation.
const DefaultDeleteWindow = 3 * time.Second

// ErrExpenseNotFound is returned when a delete targets an unknown expense.
var ErrExpenseNotFound = errors.New("expense not found")

// Phase is where an expense sits in the two-step removal flow.
type Phase int

const (
	Idle Phase = iota
	PendingDelete
	Removed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case PendingDelete:
		return "pending_delete"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// PendingSlot is the single ledger-wide pending-delete slot.
// Token identifies this occupancy so a late expiry for an earlier request
// cannot clear a newer one.
type PendingSlot struct {
	ExpenseID int64
	Token     uint64
	ExpiresAt time.Time
}

// DeleteOutcome describes what a delete request did.
type DeleteOutcome struct {
	Phase   Phase          // PendingDelete or Removed
	Slot    PendingSlot    // Set when Phase is PendingDelete
	Expense models.Expense // The targeted expense
	Notice  string         // User-facing confirmation, set when Phase is Removed
}

// Pending returns the occupied pending-delete slot, if any.
func (s State) Pending() (PendingSlot, bool) {
	if s.pending == nil {
		return PendingSlot{}, false
	}
	return *s.pending, true
}

// Phase reports where expense id is in the removal flow.
// IDs that were issued but are no longer in the ledger are Removed.
func (s State) Phase(id int64) Phase {
	if s.indexOf(id) < 0 {
		if id > 0 && id < s.nextID {
			return Removed
		}
		return Idle
	}
	if s.pending != nil && s.pending.ExpenseID == id {
		return PendingDelete
	}
	return Idle
}

// RequestDelete advances the removal flow for expense id.
//
// The first request moves the expense to PendingDelete and (re)arms the
// ledger-wide slot; any other expense that was pending returns to Idle. A
// second request for the same expense before the slot expires removes it.
// A request arriving after the deadline starts over as a first request.
func (s State) RequestDelete(id int64, now time.Time, window time.Duration) (State, DeleteOutcome, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s, DeleteOutcome{}, ErrExpenseNotFound
	}
	target := s.expenses[i].Clone()

	if s.pending != nil && s.pending.ExpenseID == id && now.Before(s.pending.ExpiresAt) {
		next := s
		next.expenses = s.without(i)
		next.pending = nil
		return next, DeleteOutcome{
			Phase:   Removed,
			Expense: target,
			Notice:  "Expense deleted",
		}, nil
	}

	next := s
	next.lastToken = s.lastToken + 1
	next.pending = &PendingSlot{
		ExpenseID: id,
		Token:     next.lastToken,
		ExpiresAt: now.Add(window),
	}
	return next, DeleteOutcome{
		Phase:   PendingDelete,
		Slot:    *next.pending,
		Expense: target,
	}, nil
}

// CancelDelete empties the pending slot. It reports whether anything was
// pending.
func (s State) CancelDelete() (State, bool) {
	if s.pending == nil {
		return s, false
	}
	next := s
	next.pending = nil
	return next, true
}

// ExpireDelete empties the slot if it is still held by token.
// Stale tokens are ignored and report false.
func (s State) ExpireDelete(token uint64) (State, bool) {
	if s.pending == nil || s.pending.Token != token {
		return s, false
	}
	next := s
	next.pending = nil
	return next, true
}
