// Package memory provides an in-process implementation of storage.Store.
// Contents are lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps expenses in a map guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	expenses map[int64]models.Expense
	lastID   int64
}

// New returns an empty store.
func New() *Store {
	return &Store{expenses: make(map[int64]models.Expense)}
}

// CreateExpense stores a copy of the expense.
func (s *Store) CreateExpense(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expenses[expense.ID]; exists {
		return fmt.Errorf("expense %d already exists", expense.ID)
	}
	s.expenses[expense.ID] = expense.Clone()
	s.lastID = max(s.lastID, expense.ID)
	return nil
}

// NextExpenseID returns one past the highest ID ever stored.
func (s *Store) NextExpenseID(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastID + 1, nil
}

// ListExpenses returns copies of all expenses ordered by ID.
func (s *Store) ListExpenses(_ context.Context) ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteExpense removes an expense by ID.
func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expenses[id]; !exists {
		return fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	delete(s.expenses, id)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
