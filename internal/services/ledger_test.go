package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func TestCreateTransactionDefaultsDateAndCreatesAccounts(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()

	created := mustCreate(t, ledger, core.Transaction{
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1500},
		Category:    "Coffee",
		FromAccount: "Cash",
	})
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if created.Date.IsZero() {
		t.Fatal("expected defaulted date")
	}

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Name != "Cash" {
		t.Fatalf("expected lazily created Cash account, got %+v", accounts)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.CreateTransaction(ctx, core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 100},
		Category: "Coffee",
		// missing from_account
	})
	if !errors.Is(err, core.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestUpdateTransactionKeepsDateWhenOmitted(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	day := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)

	created := mustCreate(t, ledger, expense(day, 1500, "Coffee", "Cash"))

	updated, err := ledger.UpdateTransaction(ctx, core.Transaction{
		ID:          created.ID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1800},
		Category:    "Coffee",
		FromAccount: "Cash",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Date.Equal(day) {
		t.Fatalf("expected original date kept, got %v", updated.Date)
	}
	if updated.Amount.Cents != 1800 {
		t.Fatalf("expected updated amount, got %d", updated.Amount.Cents)
	}
}

func TestDeleteAccountGuardedByReferences(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	day := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)

	mustCreate(t, ledger, transfer(day, 1000, "Moves", "Cash", "Bank"))

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	var bank core.Account
	for _, a := range accounts {
		if a.Name == "Bank" {
			bank = a
		}
	}

	// Both sides of the transfer are referenced
	if err := ledger.DeleteAccount(ctx, bank.ID); !errors.Is(err, core.ErrReferencedEntity) {
		t.Fatalf("expected ErrReferencedEntity, got %v", err)
	}
	if _, err := store.GetAccount(ctx, bank.ID); err != nil {
		t.Fatalf("guarded account must remain intact: %v", err)
	}

	unused, err := ledger.CreateAccount(ctx, accountNamed("Savings"))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := ledger.DeleteAccount(ctx, unused.ID); err != nil {
		t.Fatalf("deleting unreferenced account: %v", err)
	}
	if _, err := store.GetAccount(ctx, unused.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected account gone, got %v", err)
	}
}

func TestDeleteCategoryGuardedByReferences(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	day := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)

	used, err := ledger.CreateCategory(ctx, core.Category{Name: "Groceries", Type: core.Expense})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	unused, err := ledger.CreateCategory(ctx, core.Category{Name: "Books", Type: core.Expense})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	mustCreate(t, ledger, expense(day, 2000, "Groceries", "Cash"))

	if err := ledger.DeleteCategory(ctx, used.ID); !errors.Is(err, core.ErrReferencedEntity) {
		t.Fatalf("expected ErrReferencedEntity, got %v", err)
	}
	if _, err := store.GetCategory(ctx, used.ID); err != nil {
		t.Fatalf("guarded category must remain intact: %v", err)
	}
	if err := ledger.DeleteCategory(ctx, unused.ID); err != nil {
		t.Fatalf("deleting unreferenced category: %v", err)
	}
}

func TestDeleteMissingEntities(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	if err := ledger.DeleteTransaction(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("transaction: expected ErrNotFound, got %v", err)
	}
	if err := ledger.DeleteAccount(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("account: expected ErrNotFound, got %v", err)
	}
	if err := ledger.DeleteCategory(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("category: expected ErrNotFound, got %v", err)
	}
	if err := ledger.DeleteRecurring(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("recurring: expected ErrNotFound, got %v", err)
	}
}

func TestListTransactionsFilterAndPaging(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		mustCreate(t, ledger, expense(time.Date(2025, time.August, day, 0, 0, 0, 0, time.UTC), int64(day*100), "Coffee", "Cash"))
	}

	// Newest first
	all, err := ledger.ListTransactions(ctx, storage.TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 || core.DayKey(all[0].Date) != "2025-08-05" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	page, err := ledger.ListTransactions(ctx, storage.TransactionFilter{Offset: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page))
	}
	if core.DayKey(page[0].Date) != "2025-08-04" || core.DayKey(page[1].Date) != "2025-08-03" {
		t.Fatalf("unexpected page contents: %+v", page)
	}
}
