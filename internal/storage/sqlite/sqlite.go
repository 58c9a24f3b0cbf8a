// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are a per-connection setting, so request them in the DSN
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateExpense persists an expense and its split in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.Date.IsZero() {
		expense.Date = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, description, amount, payer, created_at) VALUES (?, ?, ?, ?, ?)",
		expense.ID, expense.Description, expense.Amount.String(), string(expense.Payer), expense.Date.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE expense_sequence SET last_id = MAX(last_id, ?) WHERE name = 'expenses'",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to advance expense sequence: %w", err)
	}

	for participant, share := range expense.Split {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, participant, share) VALUES (?, ?, ?)",
			expense.ID, string(participant), share.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpenses retrieves every expense with its split, ordered by ID.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, description, amount, payer, created_at FROM expenses ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	byID := make(map[int64]int)
	for rows.Next() {
		var (
			e         models.Expense
			amount    string
			payer     string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.Description, &amount, &payer, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("expense %d has invalid amount %q: %w", e.ID, amount, err)
		}
		e.Payer = models.Participant(payer)
		e.Date = time.UnixMilli(createdAt).UTC()
		e.Split = make(map[models.Participant]decimal.Decimal)

		byID[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	// Release the single connection before the next query
	rows.Close()

	splitRows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, participant, share FROM expense_splits",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var (
			expenseID   int64
			participant string
			raw         string
		)
		if err := splitRows.Scan(&expenseID, &participant, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		i, ok := byID[expenseID]
		if !ok {
			continue
		}
		share, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("expense %d has invalid share %q: %w", expenseID, raw, err)
		}
		expenses[i].Split[models.Participant(participant)] = share
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return expenses, nil
}

// NextExpenseID returns one past the highest expense ID ever inserted.
func (s *SQLiteStore) NextExpenseID(ctx context.Context) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx,
		"SELECT last_id FROM expense_sequence WHERE name = 'expenses'",
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to read expense sequence: %w", err)
	}
	return last + 1, nil
}

// DeleteExpense removes an expense by ID. Its split rows cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	// Check if expense exists
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM expenses WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	return nil
}
