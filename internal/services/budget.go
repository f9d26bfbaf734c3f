package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// BudgetEvaluator compares month-to-date expense spend per category against
// the configured budget limits.
type BudgetEvaluator struct {
	store storage.Store
	agg   *Aggregator
}

func NewBudgetEvaluator(store storage.Store, agg *Aggregator) *BudgetEvaluator {
	return &BudgetEvaluator{store: store, agg: agg}
}

// Status returns one entry per configured budget, ordered by category.
// Categories with a budget but no spend this month appear with zero spent.
func (e *BudgetEvaluator) Status(ctx context.Context, now time.Time) ([]core.BudgetStatus, error) {
	budgets, err := e.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	totals, err := e.agg.MonthToDateByCategory(ctx, now, core.Expense)
	if err != nil {
		return nil, fmt.Errorf("month-to-date spend: %w", err)
	}
	spent := make(map[string]int64, len(totals))
	for _, ct := range totals {
		spent[ct.Category] = ct.Total.Cents
	}

	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		out = append(out, core.BudgetStatus{
			Category:   b.Category,
			Limit:      b.Limit,
			Spent:      core.Money{Cents: s},
			Remaining:  core.Money{Cents: b.Limit.Cents - s},
			OverBudget: s > b.Limit.Cents,
		})
	}
	return out, nil
}
