package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

// runForEachStore runs fn against every Store engine, so both the memory
// double and the production SQLite store answer identical filters the same
// way.
func runForEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func seedTransactions(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	rows := []core.Transaction{
		{Date: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), Type: core.Income, Amount: core.Money{Cents: 250000}, Category: "Salary", ToAccount: "Bank"},
		{Date: time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC), Type: core.Expense, Amount: core.Money{Cents: 3000}, Category: "Groceries", FromAccount: "Cash"},
		{Date: time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC), Type: core.Transfer, Amount: core.Money{Cents: 20000}, Category: "Moves", FromAccount: "Bank", ToAccount: "Cash"},
		{Date: time.Date(2025, time.August, 31, 23, 30, 0, 0, time.UTC), Type: core.Expense, Amount: core.Money{Cents: 1500}, Category: "Coffee", FromAccount: "Cash"},
	}
	for _, tx := range rows {
		if _, err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestListTransactionsFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter TransactionFilter
		want   int
	}{
		{"no filter", TransactionFilter{}, 4},
		{"by type", TransactionFilter{Type: core.Expense}, 2},
		{"by category", TransactionFilter{Category: "Groceries"}, 1},
		{"account matches from side", TransactionFilter{Account: "Bank"}, 2},
		{"account matches either side", TransactionFilter{Account: "Cash"}, 3},
		{"start bound", TransactionFilter{Start: time.Date(2025, time.August, 6, 0, 0, 0, 0, time.UTC)}, 2},
		{"end bound covers whole day", TransactionFilter{End: time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC)}, 4},
		{"end bound excludes later days", TransactionFilter{End: time.Date(2025, time.August, 9, 0, 0, 0, 0, time.UTC)}, 2},
		{"type and range", TransactionFilter{Type: core.Expense, Start: time.Date(2025, time.August, 6, 0, 0, 0, 0, time.UTC)}, 1},
	}

	runForEachStore(t, func(t *testing.T, store Store) {
		seedTransactions(t, store)
		ctx := context.Background()

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				got, err := store.ListTransactions(ctx, tc.filter)
				if err != nil {
					t.Fatalf("list: %v", err)
				}
				if len(got) != tc.want {
					t.Fatalf("expected %d rows, got %d", tc.want, len(got))
				}
				n, err := store.CountTransactions(ctx, tc.filter)
				if err != nil {
					t.Fatalf("count: %v", err)
				}
				if n != int64(tc.want) {
					t.Fatalf("count disagrees with list: %d vs %d", n, tc.want)
				}
			})
		}
	})
}

func TestListTransactionsDayBoundEdges(t *testing.T) {
	runForEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		// Whole-second timestamp in the last second of the day, and a
		// sub-second timestamp right after midnight: both sit on the edges
		// of a day-granular range.
		lastSecond := time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC)
		afterMidnight := time.Date(2026, time.September, 1, 0, 0, 0, 500_000_000, time.UTC)
		for _, date := range []time.Time{lastSecond, afterMidnight} {
			if _, err := store.CreateTransaction(ctx, core.Transaction{
				Date: date, Type: core.Expense,
				Amount: core.Money{Cents: 1000}, Category: "Coffee", FromAccount: "Cash",
			}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}

		got, err := store.ListTransactions(ctx, TransactionFilter{
			End: time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("list with end bound: %v", err)
		}
		if len(got) != 1 || !got[0].Date.Equal(lastSecond) {
			t.Fatalf("end bound must cover the whole end day, got %+v", got)
		}

		got, err = store.ListTransactions(ctx, TransactionFilter{
			Start: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("list with start bound: %v", err)
		}
		if len(got) != 1 || !got[0].Date.Equal(afterMidnight) {
			t.Fatalf("midnight start must cover sub-second timestamps, got %+v", got)
		}
	})
}

func TestListTransactionsOrderAndPaging(t *testing.T) {
	runForEachStore(t, func(t *testing.T, store Store) {
		seedTransactions(t, store)
		ctx := context.Background()

		all, err := store.ListTransactions(ctx, TransactionFilter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for i := 1; i < len(all); i++ {
			if all[i].Date.After(all[i-1].Date) {
				t.Fatalf("expected date descending, got %+v", all)
			}
		}

		page, err := store.ListTransactions(ctx, TransactionFilter{Offset: 1, Limit: 2})
		if err != nil {
			t.Fatalf("list page: %v", err)
		}
		if len(page) != 2 || !page[0].Date.Equal(all[1].Date) {
			t.Fatalf("unexpected page: %+v", page)
		}

		past, err := store.ListTransactions(ctx, TransactionFilter{Offset: 100})
		if err != nil {
			t.Fatalf("list past end: %v", err)
		}
		if len(past) != 0 {
			t.Fatalf("expected empty page past the end, got %d rows", len(past))
		}
	})
}

func TestListTransactionsSameInstantOrdersByIDDesc(t *testing.T) {
	runForEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		date := time.Date(2025, time.August, 10, 12, 0, 0, 0, time.UTC)

		var ids []int64
		for i := 0; i < 3; i++ {
			created, err := store.CreateTransaction(ctx, core.Transaction{
				Date: date, Type: core.Expense,
				Amount: core.Money{Cents: 1000}, Category: "Coffee", FromAccount: "Cash",
			})
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			ids = append(ids, created.ID)
		}

		got, err := store.ListTransactions(ctx, TransactionFilter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(got))
		}
		for i, want := range []int64{ids[2], ids[1], ids[0]} {
			if got[i].ID != want {
				t.Fatalf("expected newest id first, got %+v", got)
			}
		}
	})
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	runForEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		first, err := store.EnsureAccount(ctx, "Bank")
		if err != nil {
			t.Fatalf("ensure: %v", err)
		}
		second, err := store.EnsureAccount(ctx, "Bank")
		if err != nil {
			t.Fatalf("ensure again: %v", err)
		}
		if first.ID != second.ID {
			t.Fatalf("expected same account, got ids %d and %d", first.ID, second.ID)
		}

		if _, err := store.CreateAccount(ctx, core.Account{Name: "Bank"}); err == nil {
			t.Fatal("expected duplicate name to be rejected")
		}
	})
}

func TestUpdateRecurringPreservesLastProcessed(t *testing.T) {
	runForEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		rt, err := store.CreateRecurring(ctx, core.RecurringTransaction{
			DayOfMonth: 5, Type: core.Expense,
			Amount: core.Money{Cents: 1000}, Category: "Rent", FromAccount: "Bank",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		processed := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)
		if err := store.SetRecurringLastProcessed(ctx, rt.ID, processed); err != nil {
			t.Fatalf("set last processed: %v", err)
		}

		rt.Amount = core.Money{Cents: 2000}
		if err := store.UpdateRecurring(ctx, rt); err != nil {
			t.Fatalf("update: %v", err)
		}

		got, err := store.GetRecurring(ctx, rt.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Amount.Cents != 2000 {
			t.Fatalf("expected updated amount, got %d", got.Amount.Cents)
		}
		if !got.LastProcessed.Equal(processed) {
			t.Fatalf("expected LastProcessed preserved, got %v", got.LastProcessed)
		}
	})
}

func TestUpsertNetWorthSnapshotOneRowPerDay(t *testing.T) {
	runForEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		morning := time.Date(2025, time.August, 10, 8, 0, 0, 0, time.UTC)
		evening := time.Date(2025, time.August, 10, 20, 0, 0, 0, time.UTC)

		first, err := store.UpsertNetWorthSnapshot(ctx, morning, core.Money{Cents: 1000})
		if err != nil {
			t.Fatalf("first upsert: %v", err)
		}
		second, err := store.UpsertNetWorthSnapshot(ctx, evening, core.Money{Cents: 2000})
		if err != nil {
			t.Fatalf("second upsert: %v", err)
		}
		if first.ID != second.ID {
			t.Fatalf("expected same row, got ids %d and %d", first.ID, second.ID)
		}

		history, err := store.ListNetWorthHistory(ctx, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(history) != 1 || history[0].Value.Cents != 2000 {
			t.Fatalf("expected one overwritten row, got %+v", history)
		}
	})
}

func TestTransactionRoundTrip(t *testing.T) {
	runForEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		in := core.Transaction{
			Date:        time.Date(2025, time.August, 10, 14, 30, 15, 123_000_000, time.UTC),
			Type:        core.Transfer,
			Amount:      core.Money{Cents: 123456},
			Category:    "Moves",
			Description: "monthly savings",
			FromAccount: "Bank",
			ToAccount:   "Savings",
		}

		created, err := store.CreateTransaction(ctx, in)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := store.GetTransaction(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.Date.Equal(in.Date) {
			t.Fatalf("date changed: %v vs %v", got.Date, in.Date)
		}
		if got.Type != in.Type || got.Amount != in.Amount || got.Category != in.Category ||
			got.Description != in.Description || got.FromAccount != in.FromAccount || got.ToAccount != in.ToAccount {
			t.Fatalf("round trip mismatch: %+v vs %+v", got, in)
		}
	})
}

func TestMissingRowsReturnNotFound(t *testing.T) {
	runForEachStore(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		if _, err := store.GetTransaction(ctx, 999); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("get transaction: expected ErrNotFound, got %v", err)
		}
		if err := store.UpdateTransaction(ctx, core.Transaction{ID: 999}); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("update transaction: expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteBudget(ctx, 999); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("delete budget: expected ErrNotFound, got %v", err)
		}
		if err := store.SetRecurringLastProcessed(ctx, 999, time.Now()); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("set last processed: expected ErrNotFound, got %v", err)
		}
	})
}
