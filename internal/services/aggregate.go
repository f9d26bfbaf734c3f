package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Aggregator produces category- and month-bucketed sums over the ledger.
// Both operations are pure reads; buckets with no matching transactions are
// absent rather than zero.
type Aggregator struct {
	store storage.Store
}

func NewAggregator(store storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// ByCategory sums amounts per category for one transaction type within the
// inclusive date range. Zero start or end leaves that bound open. Results are
// sorted by category name.
func (a *Aggregator) ByCategory(ctx context.Context, start, end time.Time, typ core.TransactionType) ([]core.CategoryTotal, error) {
	transactions, err := a.store.ListTransactions(ctx, storage.TransactionFilter{
		Type:  typ,
		Start: start,
		End:   end,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	sums := make(map[string]int64)
	for _, t := range transactions {
		sums[t.Category] += t.Amount.Cents
	}

	out := make([]core.CategoryTotal, 0, len(sums))
	for category, cents := range sums {
		out = append(out, core.CategoryTotal{Category: category, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// ByMonth sums amounts per calendar month ("2006-01") for one transaction
// type within the inclusive date range, in chronological order.
func (a *Aggregator) ByMonth(ctx context.Context, start, end time.Time, typ core.TransactionType) ([]core.MonthTotal, error) {
	transactions, err := a.store.ListTransactions(ctx, storage.TransactionFilter{
		Type:  typ,
		Start: start,
		End:   end,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	sums := make(map[string]int64)
	for _, t := range transactions {
		sums[core.MonthKey(t.Date)] += t.Amount.Cents
	}

	out := make([]core.MonthTotal, 0, len(sums))
	for month, cents := range sums {
		out = append(out, core.MonthTotal{Month: month, Total: core.Money{Cents: cents}})
	}
	// "2006-01" keys sort chronologically as strings
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// MonthToDateByCategory is ByCategory restricted to the calendar month
// containing now, up to and including today.
func (a *Aggregator) MonthToDateByCategory(ctx context.Context, now time.Time, typ core.TransactionType) ([]core.CategoryTotal, error) {
	return a.ByCategory(ctx, core.StartOfMonth(now), now, typ)
}
