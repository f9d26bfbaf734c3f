package services

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestBudgetStatusOverAndUnder(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	now := time.Date(2025, time.August, 20, 12, 0, 0, 0, time.UTC)

	for _, b := range []core.Budget{
		{Category: "Groceries", Limit: core.Money{Cents: 30000}},
		{Category: "Transport", Limit: core.Money{Cents: 10000}},
	} {
		if _, err := ledger.UpsertBudget(ctx, b); err != nil {
			t.Fatalf("upsert budget: %v", err)
		}
	}

	mustCreate(t, ledger, expense(time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC), 20000, "Groceries", "Cash"))
	mustCreate(t, ledger, expense(time.Date(2025, time.August, 12, 0, 0, 0, 0, time.UTC), 15000, "Groceries", "Cash"))
	mustCreate(t, ledger, expense(time.Date(2025, time.August, 8, 0, 0, 0, 0, time.UTC), 4000, "Transport", "Cash"))
	// Previous month: must not count
	mustCreate(t, ledger, expense(time.Date(2025, time.July, 8, 0, 0, 0, 0, time.UTC), 50000, "Groceries", "Cash"))

	status, err := NewBudgetEvaluator(store, NewAggregator(store)).Status(ctx, now)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(status))
	}

	groceries := status[0]
	if groceries.Category != "Groceries" {
		t.Fatalf("expected Groceries first (ordered by category), got %+v", status)
	}
	if groceries.Spent.Cents != 35000 {
		t.Fatalf("Groceries spent: expected 35000, got %d", groceries.Spent.Cents)
	}
	if groceries.Remaining.Cents != -5000 {
		t.Fatalf("Groceries remaining: expected -5000, got %d", groceries.Remaining.Cents)
	}
	if !groceries.OverBudget {
		t.Fatal("Groceries should be over budget")
	}

	transport := status[1]
	if transport.Spent.Cents != 4000 || transport.Remaining.Cents != 6000 || transport.OverBudget {
		t.Fatalf("unexpected Transport status: %+v", transport)
	}
}

func TestBudgetStatusZeroSpendAndExactLimit(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	now := time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC)

	for _, b := range []core.Budget{
		{Category: "Books", Limit: core.Money{Cents: 5000}},
		{Category: "Coffee", Limit: core.Money{Cents: 2000}},
	} {
		if _, err := ledger.UpsertBudget(ctx, b); err != nil {
			t.Fatalf("upsert budget: %v", err)
		}
	}
	// Spend exactly at the Coffee limit
	mustCreate(t, ledger, expense(time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC), 2000, "Coffee", "Cash"))

	status, err := NewBudgetEvaluator(store, NewAggregator(store)).Status(ctx, now)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	books := status[0]
	if books.Category != "Books" || books.Spent.Cents != 0 || books.Remaining.Cents != 5000 || books.OverBudget {
		t.Fatalf("unexpected Books status: %+v", books)
	}
	coffee := status[1]
	if coffee.Remaining.Cents != 0 || coffee.OverBudget {
		t.Fatalf("spending exactly the limit is not over budget: %+v", coffee)
	}
}

func TestUpsertBudgetReplacesLimit(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	if _, err := ledger.UpsertBudget(ctx, core.Budget{Category: "Groceries", Limit: core.Money{Cents: 30000}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := ledger.UpsertBudget(ctx, core.Budget{Category: "Groceries", Limit: core.Money{Cents: 45000}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	budgets, err := store.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("expected one budget per category, got %d", len(budgets))
	}
	if budgets[0].Limit.Cents != 45000 {
		t.Fatalf("expected replaced limit 45000, got %d", budgets[0].Limit.Cents)
	}
}
