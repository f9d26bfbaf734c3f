package services

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// newTestLedger wires a Ledger over a fresh in-memory store with no event
// publishing.
func newTestLedger(t *testing.T) (*Ledger, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewLedger(store, nil), store
}

func mustCreate(t *testing.T, ledger *Ledger, tx core.Transaction) core.Transaction {
	t.Helper()
	created, err := ledger.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return created
}

func expense(date time.Time, cents int64, category, from string) core.Transaction {
	return core.Transaction{
		Date:        date,
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		FromAccount: from,
	}
}

func income(date time.Time, cents int64, category, to string) core.Transaction {
	return core.Transaction{
		Date:      date,
		Type:      core.Income,
		Amount:    core.Money{Cents: cents},
		Category:  category,
		ToAccount: to,
	}
}

func accountNamed(name string) core.Account {
	return core.Account{Name: name}
}

func transfer(date time.Time, cents int64, category, from, to string) core.Transaction {
	return core.Transaction{
		Date:        date,
		Type:        core.Transfer,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		FromAccount: from,
		ToAccount:   to,
	}
}
