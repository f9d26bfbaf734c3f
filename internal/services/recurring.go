package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// RecurringPrefix marks generated transactions in their description.
const RecurringPrefix = "[Recurring] "

// RecurringProcessor materializes recurring rules into concrete transactions,
// at most once per rule per calendar month. Idempotence comes from an
// existence check against the ledger, not from the rule's LastProcessed
// field: a transaction with the rule's category and type inside the current
// month means the rule is done for that month. The whole Process call runs
// under a mutex because the existence check and the insert are not otherwise
// atomic.
type RecurringProcessor struct {
	mu     sync.Mutex
	store  storage.Store
	ledger *Ledger
}

func NewRecurringProcessor(store storage.Store, ledger *Ledger) *RecurringProcessor {
	return &RecurringProcessor{store: store, ledger: ledger}
}

// Process evaluates every rule against today and inserts the due ones.
// Returns the number of transactions created. A failing rule is logged and
// skipped; the remaining rules still run.
func (p *RecurringProcessor) Process(ctx context.Context, today time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rules, err := p.store.ListRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring rules: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring rules",
		"total", len(rules),
		"processing_date", core.DayKey(today))

	created := 0
	for _, rule := range rules {
		due, err := p.isDue(ctx, rule, today)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check recurring rule",
				"id", rule.ID, "error", err)
			continue
		}
		if !due {
			continue
		}

		t := rule.Template(today)
		t.Description = RecurringPrefix + t.Description

		if _, err := p.ledger.CreateTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring rule",
				"id", rule.ID,
				"category", rule.Category,
				"error", err)
			continue
		}

		// Bookkeeping only; never consulted for dueness
		if err := p.store.SetRecurringLastProcessed(ctx, rule.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to update last processed date",
				"id", rule.ID, "error", err)
		}

		created++
		slog.InfoContext(ctx, "Created transaction from recurring rule",
			"id", rule.ID,
			"category", rule.Category,
			"amount_cents", rule.Amount.Cents,
			"date", core.DayKey(t.Date))
	}

	slog.InfoContext(ctx, "Recurring rule processing complete",
		"created", created,
		"total_checked", len(rules))

	return created, nil
}

// isDue reports whether the rule should fire: its day of month has been
// reached and no transaction with the rule's category and type exists yet in
// today's calendar month. The configured day is clamped to the month's
// length for the reached check, matching the clamped date the generated
// transaction is stamped with.
func (p *RecurringProcessor) isDue(ctx context.Context, rule core.RecurringTransaction, today time.Time) (bool, error) {
	if today.Day() < core.MonthDay(today, rule.DayOfMonth).Day() {
		return false, nil
	}

	monthStart := core.StartOfMonth(today)
	monthEnd := core.MonthDay(today, 31) // clamps to the month's last day
	n, err := p.store.CountTransactions(ctx, storage.TransactionFilter{
		Type:     rule.Type,
		Category: rule.Category,
		Start:    monthStart,
		End:      monthEnd,
	})
	if err != nil {
		return false, fmt.Errorf("count generated transactions: %w", err)
	}
	return n == 0, nil
}
