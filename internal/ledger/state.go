// Package ledger holds the expense ledger's application state and the pure
// update functions that move it forward.
//
// State is a value. Every update returns a new State and leaves the receiver
// untouched, so callers own exactly one current state and replace it after
// each event.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// State is the complete ledger: participants, admitted expenses and the
// pending-delete slot.
type State struct {
	participants models.ParticipantSet
	expenses     []models.Expense
	nextID       int64
	pending      *PendingSlot
	lastToken    uint64
}

// New returns an empty ledger for the given participants.
func New(participants models.ParticipantSet) State {
	return State{participants: participants, nextID: 1}
}

// Restore rebuilds a ledger from previously admitted expenses.
// Expenses are ordered by ID. nextID is the first ID never issued, as
// recorded by the store; it is raised past the highest restored ID if
// needed, so IDs of removed expenses are not handed out again.
func Restore(participants models.ParticipantSet, expenses []models.Expense, nextID int64) State {
	s := New(participants)
	if nextID > s.nextID {
		s.nextID = nextID
	}
	s.expenses = make([]models.Expense, len(expenses))
	for i, e := range expenses {
		s.expenses[i] = e.Clone()
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	sort.SliceStable(s.expenses, func(i, j int) bool {
		return s.expenses[i].ID < s.expenses[j].ID
	})
	return s
}

// Participants returns the configured participant set.
func (s State) Participants() models.ParticipantSet {
	return s.participants
}

// Expenses returns the admitted expenses in insertion order.
func (s State) Expenses() []models.Expense {
	out := make([]models.Expense, len(s.expenses))
	for i, e := range s.expenses {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of admitted expenses.
func (s State) Len() int {
	return len(s.expenses)
}

// Expense looks up an admitted expense by ID.
func (s State) Expense(id int64) (models.Expense, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.expenses[i].Clone(), true
	}
	return models.Expense{}, false
}

// NextID is the ID the next admitted expense will receive.
func (s State) NextID() int64 {
	return s.nextID
}

// Balances recomputes every participant's balance from the full history.
func (s State) Balances() map[models.Participant]decimal.Decimal {
	return calculator.Balances(s.participants, s.expenses)
}

// Summary returns paid/owed/net totals in participant order.
func (s State) Summary() []calculator.MemberBalance {
	return calculator.Summarize(s.participants, s.expenses)
}

// AddExpense validates d and, if it passes, admits it with the next ID.
// On validation failure the returned state is the receiver unchanged and the
// error is a ValidationErrors value.
func (s State) AddExpense(d Draft, now time.Time) (State, models.Expense, error) {
	if err := Validate(s.participants, d); err != nil {
		return s, models.Expense{}, err
	}

	split := make(map[models.Participant]decimal.Decimal, s.participants.Len())
	for _, p := range s.participants.Members() {
		split[p] = d.Split[p]
	}
	e := models.Expense{
		ID:          s.nextID,
		Description: strings.TrimSpace(d.Description),
		Amount:      d.Amount.Decimal,
		Payer:       d.Payer,
		Date:        now,
		Split:       split,
	}

	next := s
	next.expenses = make([]models.Expense, len(s.expenses), len(s.expenses)+1)
	copy(next.expenses, s.expenses)
	next.expenses = append(next.expenses, e)
	next.nextID = s.nextID + 1

	return next, e.Clone(), nil
}

func (s State) indexOf(id int64) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// without returns the expenses slice minus the entry at index i.
func (s State) without(i int) []models.Expense {
	out := make([]models.Expense, 0, len(s.expenses)-1)
	out = append(out, s.expenses[:i]...)
	return append(out, s.expenses[i+1:]...)
}
