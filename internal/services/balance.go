package services

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// BalanceCalculator derives per-account balances from the full transaction
// history. It never writes.
type BalanceCalculator struct {
	store storage.Store
}

func NewBalanceCalculator(store storage.Store) *BalanceCalculator {
	return &BalanceCalculator{store: store}
}

// Balances returns the signed balance of every known account: the sum of
// amounts moved into it minus the sum moved out, over all time. Accounts no
// transaction references come back with a zero balance.
func (c *BalanceCalculator) Balances(ctx context.Context) (map[string]core.Money, error) {
	balances := make(map[string]core.Money)

	accounts, err := c.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	for _, a := range accounts {
		balances[a.Name] = core.Money{}
	}

	transactions, err := c.store.ListTransactions(ctx, storage.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	for _, t := range transactions {
		if t.ToAccount != "" {
			b := balances[t.ToAccount]
			b.Cents += t.Amount.Cents
			balances[t.ToAccount] = b
		}
		if t.FromAccount != "" {
			b := balances[t.FromAccount]
			b.Cents -= t.Amount.Cents
			balances[t.FromAccount] = b
		}
	}

	return balances, nil
}

// Total sums all balances into a single net-worth figure.
func (c *BalanceCalculator) Total(ctx context.Context) (core.Money, error) {
	balances, err := c.Balances(ctx)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, b := range balances {
		total.Cents += b.Cents
	}
	return total, nil
}
