// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for expense storage operations.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the ledger loop.
type Store interface {
	// CreateExpense persists an admitted expense.
	// The expense ID is assigned by the ledger, not by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns every stored expense ordered by ID.
	ListExpenses(ctx context.Context) ([]models.Expense, error)

	// NextExpenseID returns one past the highest expense ID ever stored,
	// including deleted ones. It is 1 for an empty store.
	NextExpenseID(ctx context.Context) (int64, error)

	// DeleteExpense removes an expense by ID.
	// Returns an error wrapping ErrNotFound if the expense does not exist.
	DeleteExpense(ctx context.Context, id int64) error

	// Close releases any resources held by the store.
	Close() error
}
