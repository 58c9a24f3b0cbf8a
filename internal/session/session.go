// Package session runs the ledger's interaction loop.
//
// A Session owns the single ledger.State. Every operation is sent to one
// goroutine and applied there in arrival order, so the state never needs a
// lock. The pending-delete timer is the only time-driven input; when it
// fires it posts an expiry back into the same loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Options configures a Session.
type Options struct {
	Participants models.ParticipantSet
	Store        storage.Store
	DeleteWindow time.Duration    // Defaults to ledger.DefaultDeleteWindow
	Clock        Clock            // Defaults to SystemClock
	Metrics      *metrics.Metrics // Optional
}

// View is a consistent snapshot of the ledger.
type View struct {
	Expenses  []models.Expense
	Balances  map[models.Participant]decimal.Decimal
	Summary   []calculator.MemberBalance
	Transfers []calculator.Transfer
	Pending   *ledger.PendingSlot
}

// Session is the interaction loop around a ledger.
type Session struct {
	participants models.ParticipantSet
	store        storage.Store
	window       time.Duration
	clock        Clock
	metrics      *metrics.Metrics

	cmds      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the loop goroutine.
	state ledger.State
	timer Timer
}

// Open restores the ledger from the store and starts the loop.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Participants.Len() == 0 {
		return nil, errors.New("session requires at least one participant")
	}
	if opts.Store == nil {
		return nil, errors.New("session requires a store")
	}
	if opts.DeleteWindow <= 0 {
		opts.DeleteWindow = ledger.DefaultDeleteWindow
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	stored, err := opts.Store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	nextID, err := opts.Store.NextExpenseID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense sequence: %w", err)
	}

	s := &Session{
		participants: opts.Participants,
		store:        opts.Store,
		window:       opts.DeleteWindow,
		clock:        opts.Clock,
		metrics:      opts.Metrics,
		cmds:         make(chan func()),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		state:        ledger.Restore(opts.Participants, stored, nextID),
	}
	s.metrics.SetExpenses(s.state.Len())
	slog.Info("Ledger restored",
		"expenses", s.state.Len(),
		"next_id", s.state.NextID(),
		"participants", opts.Participants.Strings(),
	)

	go s.run()
	return s, nil
}

// Close stops the loop and any outstanding timer. It is safe to call more
// than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
	})
	return nil
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case cmd := <-s.cmds:
			cmd()
		case <-s.quit:
			s.stopTimer()
			return
		}
	}
}

// exec runs fn on the loop goroutine and waits for it to finish.
func (s *Session) exec(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}

	select {
	case s.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrClosed
	}
	// Once the loop has taken the command it runs it to completion.
	<-finished
	return nil
}

// post queues fn without waiting for it. Used by timer callbacks.
func (s *Session) post(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.quit:
	}
}

// Participants returns the configured participant set.
func (s *Session) Participants() models.ParticipantSet {
	return s.participants
}

// AddExpense validates and admits an expense, writing it through to the
// store. It returns the balance summary as of this admission. Validation
// failures return ledger.ValidationErrors and leave the ledger unchanged.
func (s *Session) AddExpense(ctx context.Context, d ledger.Draft) (models.Expense, []calculator.MemberBalance, error) {
	var (
		added   models.Expense
		summary []calculator.MemberBalance
		opErr   error
	)
	err := s.exec(ctx, func() {
		next, e, err := s.state.AddExpense(d, s.clock.Now())
		if err != nil {
			var verrs ledger.ValidationErrors
			if errors.As(err, &verrs) {
				s.metrics.ValidationFailed(verrs.Fields())
			}
			slog.Debug("Expense rejected", "error", err)
			opErr = err
			return
		}

		if err := s.store.CreateExpense(ctx, &e); err != nil {
			slog.Error("Failed to persist expense", "expense_id", e.ID, "error", err)
			opErr = fmt.Errorf("failed to save expense: %w", err)
			return
		}

		s.state = next
		s.metrics.ExpenseAdded(s.state.Len())
		slog.Info("Expense added",
			"expense_id", e.ID,
			"description", e.Description,
			"amount", e.Amount.String(),
			"payer", e.Payer,
		)
		added = e
		summary = s.state.Summary()
	})
	if err != nil {
		return models.Expense{}, nil, err
	}
	return added, summary, opErr
}

// RequestDelete advances the two-step removal of an expense. The first call
// arms the pending slot and its expiry timer; a second call for the same
// expense before expiry removes it.
func (s *Session) RequestDelete(ctx context.Context, id int64) (ledger.DeleteOutcome, error) {
	var (
		out   ledger.DeleteOutcome
		opErr error
	)
	err := s.exec(ctx, func() {
		next, o, err := s.state.RequestDelete(id, s.clock.Now(), s.window)
		if err != nil {
			opErr = fmt.Errorf("expense %d: %w", id, err)
			return
		}

		if o.Phase == ledger.Removed {
			if err := s.store.DeleteExpense(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
				slog.Error("Failed to delete stored expense", "expense_id", id, "error", err)
				opErr = fmt.Errorf("failed to delete expense: %w", err)
				return
			}
			s.stopTimer()
			s.state = next
			s.metrics.DeleteTransition(metrics.DeleteRemoved)
			s.metrics.SetExpenses(s.state.Len())
			slog.Info("Expense deleted", "expense_id", id)
			out = o
			return
		}

		s.stopTimer()
		s.state = next
		token := o.Slot.Token
		s.timer = s.clock.AfterFunc(s.window, func() {
			s.post(func() { s.expire(token) })
		})
		s.metrics.DeleteTransition(metrics.DeletePending)
		slog.Info("Delete pending confirmation",
			"expense_id", id,
			"expires_at", o.Slot.ExpiresAt,
		)
		out = o
	})
	if err != nil {
		return ledger.DeleteOutcome{}, err
	}
	return out, opErr
}

// CancelDelete clears the pending slot. It reports whether anything was
// pending.
func (s *Session) CancelDelete(ctx context.Context) (bool, error) {
	var cancelled bool
	err := s.exec(ctx, func() {
		pending, _ := s.state.Pending()
		s.state, cancelled = s.state.CancelDelete()
		if cancelled {
			s.stopTimer()
			s.metrics.DeleteTransition(metrics.DeleteCancelled)
			slog.Info("Delete cancelled", "expense_id", pending.ExpenseID)
		}
	})
	return cancelled, err
}

// expire runs on the loop when a pending-delete timer fires.
func (s *Session) expire(token uint64) {
	pending, _ := s.state.Pending()
	var expired bool
	s.state, expired = s.state.ExpireDelete(token)
	if !expired {
		return
	}
	s.timer = nil
	s.metrics.DeleteTransition(metrics.DeleteExpired)
	slog.Info("Delete confirmation expired", "expense_id", pending.ExpenseID)
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// EvenSplit divides amount among the participants in enumeration order.
// A missing or non-positive amount returns calculator.ErrEvenSplitNeedsAmount.
func (s *Session) EvenSplit(ctx context.Context, amount decimal.NullDecimal) (map[models.Participant]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	split, err := calculator.EvenSplit(amount, s.participants.Members())
	if errors.Is(err, calculator.ErrEvenSplitNeedsAmount) {
		s.metrics.EvenSplitRefused()
	}
	return split, err
}

// Snapshot returns the current expenses, derived balances and pending slot.
func (s *Session) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := s.exec(ctx, func() {
		summary := s.state.Summary()
		v = View{
			Expenses:  s.state.Expenses(),
			Balances:  s.state.Balances(),
			Summary:   summary,
			Transfers: calculator.SuggestTransfers(s.participants, summary),
		}
		if p, ok := s.state.Pending(); ok {
			v.Pending = &p
		}
	})
	return v, err
}
