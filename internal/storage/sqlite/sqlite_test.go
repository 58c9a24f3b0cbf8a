package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	store, err := New(dbPath)
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func testExpense(id int64, description string) *models.Expense {
	return &models.Expense{
		ID:          id,
		Description: description,
		Amount:      decimal.RequireFromString("10.00"),
		Payer:       "Alice",
		Date:        time.Date(2026, 5, 1, 12, 0, 0, 123_000_000, time.UTC),
		Split: map[models.Participant]decimal.Decimal{
			"Alice":   decimal.RequireFromString("3.34"),
			"Bob":     decimal.RequireFromString("3.33"),
			"Charlie": decimal.RequireFromString("3.33"),
		},
	}
}

func TestSQLiteStore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateExpense and ListExpenses round-trip", func(t *testing.T) {
		original := testExpense(1, "Dinner")
		require.NoError(t, store.CreateExpense(ctx, original))

		expenses, err := store.ListExpenses(ctx)
		require.NoError(t, err)
		require.Len(t, expenses, 1)

		got := expenses[0]
		assert.Equal(t, original.ID, got.ID)
		assert.Equal(t, original.Description, got.Description)
		assert.True(t, original.Amount.Equal(got.Amount), "amount = %s, want %s", got.Amount, original.Amount)
		assert.Equal(t, original.Payer, got.Payer)
		assert.True(t, original.Date.Equal(got.Date), "date %v != %v", got.Date, original.Date)
		require.Len(t, got.Split, 3)
		for p, share := range original.Split {
			assert.True(t, share.Equal(got.Split[p]), "%s share = %s, want %s", p, got.Split[p], share)
		}
	})

	t.Run("ListExpenses orders by ID", func(t *testing.T) {
		require.NoError(t, store.CreateExpense(ctx, testExpense(5, "Taxi")))
		require.NoError(t, store.CreateExpense(ctx, testExpense(3, "Lunch")))

		expenses, err := store.ListExpenses(ctx)
		require.NoError(t, err)

		var ids []int64
		for _, e := range expenses {
			ids = append(ids, e.ID)
		}
		assert.Equal(t, []int64{1, 3, 5}, ids)
	})

	t.Run("CreateExpense rejects duplicate ID", func(t *testing.T) {
		err := store.CreateExpense(ctx, testExpense(1, "Again"))
		assert.Error(t, err)
	})

	t.Run("DeleteExpense removes expense and split", func(t *testing.T) {
		require.NoError(t, store.DeleteExpense(ctx, 3))

		expenses, err := store.ListExpenses(ctx)
		require.NoError(t, err)
		for _, e := range expenses {
			assert.NotEqual(t, int64(3), e.ID)
		}

		var orphans int
		err = store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expense_splits WHERE expense_id = 3").Scan(&orphans)
		require.NoError(t, err)
		assert.Zero(t, orphans, "split rows should cascade")
	})

	t.Run("DeleteExpense returns ErrNotFound for nonexistent expense", func(t *testing.T) {
		err := store.DeleteExpense(ctx, 999)
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})
}

func TestSQLiteStore_NextExpenseIDSurvivesDeleteAndReopen(t *testing.T) {
	store, dbPath := newTestStore(t)
	ctx := context.Background()

	next, err := store.NextExpenseID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "empty store")

	require.NoError(t, store.CreateExpense(ctx, testExpense(1, "Dinner")))
	require.NoError(t, store.CreateExpense(ctx, testExpense(2, "Lunch")))
	require.NoError(t, store.DeleteExpense(ctx, 2))

	next, err = store.NextExpenseID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)
	require.NoError(t, store.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	next, err = reopened.NextExpenseID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next, "deleted ID 2 must not be handed out again")
}

func TestSQLiteStore_Reopen(t *testing.T) {
	store, dbPath := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateExpense(ctx, testExpense(1, "Dinner")))
	require.NoError(t, store.CreateExpense(ctx, testExpense(2, "Lunch")))
	require.NoError(t, store.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err, "migrations should be idempotent")
	defer reopened.Close()

	expenses, err := reopened.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
}
