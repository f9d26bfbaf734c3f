// Package storage defines the ledger store boundary and its two engines:
// a SQLite store for production and a memory store for tests and the
// memory backend.
package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// TransactionFilter narrows transaction reads. Zero values mean "no filter".
// Account matches either side of a movement. End is day-inclusive: a filter
// ending on a day covers every transaction of that day.
type TransactionFilter struct {
	Type     core.TransactionType
	Category string
	Account  string
	Start    time.Time
	End      time.Time
	Offset   int
	Limit    int
}

// Store is the persistence boundary the derived-state engine reads from and
// writes through. The core services depend only on this interface so the
// engine can be exercised against the memory store.
type Store interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	// ListTransactions returns matches ordered by date descending.
	ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
	CountTransactions(ctx context.Context, f TransactionFilter) (int64, error)

	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	// EnsureAccount creates the account if the name is not yet known.
	EnsureAccount(ctx context.Context, name string) (core.Account, error)
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	DeleteAccount(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error)
	GetRecurring(ctx context.Context, id int64) (core.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) error
	DeleteRecurring(ctx context.Context, id int64) error
	ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error)
	// SetRecurringLastProcessed updates bookkeeping only; it is never
	// consulted for idempotence.
	SetRecurringLastProcessed(ctx context.Context, id int64, at time.Time) error

	// UpsertBudget creates the budget or, if one exists for the category,
	// replaces its limit.
	UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	DeleteBudget(ctx context.Context, id int64) error

	// UpsertNetWorthSnapshot keeps at most one row per calendar day,
	// overwriting the value on conflict.
	UpsertNetWorthSnapshot(ctx context.Context, day time.Time, value core.Money) (core.NetWorthSnapshot, error)
	// ListNetWorthHistory returns points in the inclusive range ordered by
	// day ascending.
	ListNetWorthHistory(ctx context.Context, start, end time.Time) ([]core.NetWorthPoint, error)

	Close() error
}

// matches reports whether t passes the filter, ignoring offset/limit. Shared
// by the memory store and kept here so the SQL WHERE clauses have a single
// reference semantics.
func (f TransactionFilter) matches(t core.Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Account != "" && t.FromAccount != f.Account && t.ToAccount != f.Account {
		return false
	}
	if !f.Start.IsZero() && t.Date.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && t.Date.After(core.EndOfDay(f.End)) {
		return false
	}
	return true
}
