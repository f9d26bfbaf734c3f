// Package services holds the derived-state engine: balance and aggregation
// reads, net-worth snapshots, recurring-rule materialization, budget status,
// and the write-side guards that keep those views consistent with the ledger.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Ledger performs the writes: transaction, account, category, recurring rule
// and budget lifecycle, with validation and referential-integrity guards in
// front of the store. The AMQP client is optional; with a nil client events
// are simply not published.
type Ledger struct {
	store      storage.Store
	amqpClient *amqp.Client
}

func NewLedger(store storage.Store, amqpClient *amqp.Client) *Ledger {
	return &Ledger{store: store, amqpClient: amqpClient}
}

// CreateTransaction validates, defaults the date to now, lazily creates the
// referenced accounts, and inserts the movement.
func (l *Ledger) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	if err := l.ensureAccounts(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	created, err := l.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	l.publish(ctx, amqp.EventTransactionCreated, created.ID)
	return created, nil
}

func (l *Ledger) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, id)
}

func (l *Ledger) ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return l.store.ListTransactions(ctx, f)
}

// UpdateTransaction replaces the stored record with t, keeping the original
// date when the caller leaves it zero.
func (l *Ledger) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	existing, err := l.store.GetTransaction(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Date.IsZero() {
		t.Date = existing.Date
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := l.ensureAccounts(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	if err := l.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) error {
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	l.publish(ctx, amqp.EventTransactionDeleted, id)
	return nil
}

func (l *Ledger) ensureAccounts(ctx context.Context, t core.Transaction) error {
	for _, name := range []string{t.FromAccount, t.ToAccount} {
		if name == "" {
			continue
		}
		if _, err := l.store.EnsureAccount(ctx, name); err != nil {
			return fmt.Errorf("ensure account %q: %w", name, err)
		}
	}
	return nil
}

func (l *Ledger) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return l.store.CreateAccount(ctx, a)
}

func (l *Ledger) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return l.store.ListAccounts(ctx)
}

// DeleteAccount refuses to delete an account any transaction still names.
// Transactions reference accounts by name only, so nothing below this check
// prevents orphaning.
func (l *Ledger) DeleteAccount(ctx context.Context, id int64) error {
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	n, err := l.store.CountTransactions(ctx, storage.TransactionFilter{Account: account.Name})
	if err != nil {
		return fmt.Errorf("count account references: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: account %q has %d transactions", core.ErrReferencedEntity, account.Name, n)
	}
	return l.store.DeleteAccount(ctx, id)
}

func (l *Ledger) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return l.store.CreateCategory(ctx, c)
}

func (l *Ledger) ListCategories(ctx context.Context) ([]core.Category, error) {
	return l.store.ListCategories(ctx)
}

// DeleteCategory applies the same usage-count guard as DeleteAccount.
func (l *Ledger) DeleteCategory(ctx context.Context, id int64) error {
	category, err := l.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	n, err := l.store.CountTransactions(ctx, storage.TransactionFilter{Category: category.Name})
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: category %q has %d transactions", core.ErrReferencedEntity, category.Name, n)
	}
	return l.store.DeleteCategory(ctx, id)
}

func (l *Ledger) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	return l.store.CreateRecurring(ctx, rt)
}

func (l *Ledger) ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	return l.store.ListRecurring(ctx)
}

func (l *Ledger) UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	if err := l.store.UpdateRecurring(ctx, rt); err != nil {
		return core.RecurringTransaction{}, err
	}
	return l.store.GetRecurring(ctx, rt.ID)
}

func (l *Ledger) DeleteRecurring(ctx context.Context, id int64) error {
	return l.store.DeleteRecurring(ctx, id)
}

func (l *Ledger) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return l.store.UpsertBudget(ctx, b)
}

func (l *Ledger) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return l.store.ListBudgets(ctx)
}

func (l *Ledger) DeleteBudget(ctx context.Context, id int64) error {
	return l.store.DeleteBudget(ctx, id)
}

func (l *Ledger) publish(ctx context.Context, event string, id int64) {
	if l.amqpClient == nil {
		return
	}
	if err := l.amqpClient.PublishLedgerEvent(ctx, event, id); err != nil {
		// The ledger write already succeeded; event delivery is best effort
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"event", event, "id", id, "error", err)
	}
}

// Close releases the store and the AMQP connection.
func (l *Ledger) Close() error {
	var errs []error

	if l.store != nil {
		if err := l.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if l.amqpClient != nil {
		if err := l.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
