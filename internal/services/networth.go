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

// Snapshotter records dated net-worth snapshots, one per calendar day. The
// whole record operation runs under a mutex so concurrent triggers cannot
// race the upsert into duplicate same-day rows.
type Snapshotter struct {
	mu       sync.Mutex
	store    storage.Store
	balances *BalanceCalculator
}

func NewSnapshotter(store storage.Store, balances *BalanceCalculator) *Snapshotter {
	return &Snapshotter{store: store, balances: balances}
}

// RecordSnapshot computes total net worth and upserts the row for at's
// calendar day: the value is updated in place when the day already has one.
// Calling it again on the same day with unchanged balances is a no-op.
func (s *Snapshotter) RecordSnapshot(ctx context.Context, at time.Time) (core.NetWorthSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.balances.Total(ctx)
	if err != nil {
		return core.NetWorthSnapshot{}, fmt.Errorf("compute net worth: %w", err)
	}

	snap, err := s.store.UpsertNetWorthSnapshot(ctx, at, total)
	if err != nil {
		return core.NetWorthSnapshot{}, fmt.Errorf("record snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Net worth snapshot recorded",
		"day", core.DayKey(snap.Day),
		"value_cents", snap.Value.Cents)

	return snap, nil
}

// History returns snapshots within the inclusive range, oldest first. Zero
// bounds are open.
func (s *Snapshotter) History(ctx context.Context, start, end time.Time) ([]core.NetWorthPoint, error) {
	return s.store.ListNetWorthHistory(ctx, start, end)
}
