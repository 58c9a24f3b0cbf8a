package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := &models.Expense{
		ID:     2,
		Amount: decimal.NewFromInt(4),
		Payer:  "Bob",
		Split:  map[models.Participant]decimal.Decimal{"Bob": decimal.NewFromInt(4)},
	}
	if err := s.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if err := s.CreateExpense(ctx, &models.Expense{ID: 1}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if err := s.CreateExpense(ctx, e); err == nil {
		t.Error("expected duplicate ID to fail")
	}

	// The store keeps its own copy.
	e.Split["Bob"] = decimal.NewFromInt(100)

	list, err := s.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("unexpected list %+v", list)
	}
	if !list[1].Split["Bob"].Equal(decimal.NewFromInt(4)) {
		t.Errorf("stored split was mutated through caller's map")
	}

	if err := s.DeleteExpense(ctx, 2); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if err := s.DeleteExpense(ctx, 2); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}

	next, err := s.NextExpenseID(ctx)
	if err != nil {
		t.Fatalf("NextExpenseID failed: %v", err)
	}
	if next != 3 {
		t.Errorf("NextExpenseID after deleting the highest = %d, want 3", next)
	}
}

func TestStore_NextExpenseIDEmpty(t *testing.T) {
	next, err := New().NextExpenseID(context.Background())
	if err != nil {
		t.Fatalf("NextExpenseID failed: %v", err)
	}
	if next != 1 {
		t.Errorf("NextExpenseID = %d, want 1", next)
	}
}
