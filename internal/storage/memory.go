package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
)

// MemoryStore implements Store on in-process maps. It backs the memory data
// backend and the service tests.
type MemoryStore struct {
	mu sync.Mutex

	nextID       int64
	transactions map[int64]core.Transaction
	accounts     map[int64]core.Account
	categories   map[int64]core.Category
	recurring    map[int64]core.RecurringTransaction
	budgets      map[int64]core.Budget
	snapshots    map[string]core.NetWorthSnapshot // keyed by day
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[int64]core.Transaction),
		accounts:     make(map[int64]core.Account),
		categories:   make(map[int64]core.Category),
		recurring:    make(map[int64]core.RecurringTransaction),
		budgets:      make(map[int64]core.Budget),
		snapshots:    make(map[string]core.NetWorthSnapshot),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return core.ErrNotFound
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, f TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, t := range s.transactions {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	// Date descending, id descending as tie-breaker, matching the SQL order
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) CountTransactions(_ context.Context, f TransactionFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.transactions {
		if f.matches(t) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Name == a.Name {
			return core.Account{}, fmt.Errorf("insert account: name %q already exists", a.Name)
		}
	}
	a.ID = s.id()
	s.accounts[a.ID] = a
	return a, nil
}

func (s *MemoryStore) EnsureAccount(_ context.Context, name string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Name == name {
			return existing, nil
		}
	}
	a := core.Account{ID: s.id(), Name: name}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == c.Name && existing.Type == c.Type {
			return core.Category{}, fmt.Errorf("insert category: (%q, %s) already exists", c.Name, c.Type)
		}
	}
	c.ID = s.id()
	s.categories[c.ID] = c
	return c, nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryStore) CreateRecurring(_ context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.ID = s.id()
	s.recurring[rt.ID] = rt
	return rt, nil
}

func (s *MemoryStore) GetRecurring(_ context.Context, id int64) (core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.recurring[id]
	if !ok {
		return core.RecurringTransaction{}, core.ErrNotFound
	}
	return rt, nil
}

func (s *MemoryStore) UpdateRecurring(_ context.Context, rt core.RecurringTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.recurring[rt.ID]
	if !ok {
		return core.ErrNotFound
	}
	rt.LastProcessed = existing.LastProcessed
	s.recurring[rt.ID] = rt
	return nil
}

func (s *MemoryStore) DeleteRecurring(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.recurring, id)
	return nil
}

func (s *MemoryStore) ListRecurring(_ context.Context) ([]core.RecurringTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringTransaction, 0, len(s.recurring))
	for _, rt := range s.recurring {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfMonth != out[j].DayOfMonth {
			return out[i].DayOfMonth < out[j].DayOfMonth
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) SetRecurringLastProcessed(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.recurring[id]
	if !ok {
		return core.ErrNotFound
	}
	rt.LastProcessed = at
	s.recurring[id] = rt
	return nil
}

func (s *MemoryStore) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.budgets {
		if existing.Category == b.Category {
			existing.Limit = b.Limit
			s.budgets[id] = existing
			return existing, nil
		}
	}
	b.ID = s.id()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *MemoryStore) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *MemoryStore) DeleteBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *MemoryStore) UpsertNetWorthSnapshot(_ context.Context, day time.Time, value core.Money) (core.NetWorthSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := core.DayKey(day)
	snap, ok := s.snapshots[key]
	if !ok {
		parsed, _ := time.Parse(core.DayLayout, key)
		snap = core.NetWorthSnapshot{ID: s.id(), Day: parsed}
	}
	snap.Value = value
	s.snapshots[key] = snap
	return snap, nil
}

func (s *MemoryStore) ListNetWorthHistory(_ context.Context, start, end time.Time) ([]core.NetWorthPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.NetWorthPoint
	for key, snap := range s.snapshots {
		if !start.IsZero() && key < core.DayKey(start) {
			continue
		}
		if !end.IsZero() && key > core.DayKey(end) {
			continue
		}
		out = append(out, core.NetWorthPoint{Day: snap.Day, Value: snap.Value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}
