package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense  TransactionType = "Expense"
	Income   TransactionType = "Income"
	Transfer TransactionType = "Transfer"
)

type (
	TransactionType string

	// Transaction is a single money movement. The account fields hold account
	// names, not managed references: Expense leaves ToAccount empty, Income
	// leaves FromAccount empty, Transfer fills both with distinct names.
	Transaction struct {
		ID          int64
		Date        time.Time
		Type        TransactionType
		Amount      Money
		Category    string
		Description string
		FromAccount string
		ToAccount   string
	}

	Account struct {
		ID   int64
		Name string
	}

	// Category is unique per (Name, Type); the same name may exist under
	// different transaction types.
	Category struct {
		ID   int64
		Name string
		Type TransactionType
	}

	// RecurringTransaction is a template that the recurring processor turns
	// into a concrete Transaction once per calendar month. LastProcessed is
	// bookkeeping only; the existence of a generated transaction in the
	// current month is the authoritative idempotence check.
	RecurringTransaction struct {
		ID            int64
		DayOfMonth    int
		Type          TransactionType
		Amount        Money
		Category      string
		Description   string
		FromAccount   string
		ToAccount     string
		LastProcessed time.Time
	}

	// Budget caps monthly Expense spend for one category. At most one budget
	// exists per category; creating again replaces the limit.
	Budget struct {
		ID       int64
		Category string
		Limit    Money
	}

	// NetWorthSnapshot records total net worth for one calendar day.
	NetWorthSnapshot struct {
		ID    int64
		Day   time.Time
		Value Money
	}
)

var (
	ErrNotFound              = errors.New("not found")
	ErrReferencedEntity      = errors.New("entity is referenced by transactions")
	ErrInvalidTemplate       = errors.New("invalid transaction template")
	ErrAmbiguousScheduleDate = errors.New("ambiguous schedule date")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrEmptyCategory         = errors.New("empty category")
	ErrEmptyName             = errors.New("empty name")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Expense, Income, Transfer:
		return true
	}
	return false
}

// validateFlow enforces the account-presence invariant shared by Transaction
// and RecurringTransaction templates.
func validateFlow(typ TransactionType, from, to string) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTemplate, typ)
	}
	switch typ {
	case Expense:
		if to != "" {
			return fmt.Errorf("%w: expense must not have a to_account", ErrInvalidTemplate)
		}
		if from == "" {
			return fmt.Errorf("%w: expense requires a from_account", ErrInvalidTemplate)
		}
	case Income:
		if from != "" {
			return fmt.Errorf("%w: income must not have a from_account", ErrInvalidTemplate)
		}
		if to == "" {
			return fmt.Errorf("%w: income requires a to_account", ErrInvalidTemplate)
		}
	case Transfer:
		if from == "" || to == "" {
			return fmt.Errorf("%w: transfer requires both accounts", ErrInvalidTemplate)
		}
		if from == to {
			return fmt.Errorf("%w: transfer accounts must be distinct", ErrInvalidTemplate)
		}
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return validateFlow(t.Type, t.FromAccount, t.ToAccount)
}

// Template returns the concrete transaction the recurring rule generates,
// dated in date's year and month on the rule's day of month. Days beyond the
// end of a short month clamp to the month's last day.
func (rt RecurringTransaction) Template(date time.Time) Transaction {
	return Transaction{
		Date:        MonthDay(date, rt.DayOfMonth),
		Type:        rt.Type,
		Amount:      rt.Amount,
		Category:    rt.Category,
		Description: rt.Description,
		FromAccount: rt.FromAccount,
		ToAccount:   rt.ToAccount,
	}
}

func (rt RecurringTransaction) Validate() error {
	if rt.DayOfMonth < 1 || rt.DayOfMonth > 31 {
		return fmt.Errorf("%w: day_of_month %d outside 1-31", ErrAmbiguousScheduleDate, rt.DayOfMonth)
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(rt.Category) == "" {
		return ErrEmptyCategory
	}
	if len(rt.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return validateFlow(rt.Type, rt.FromAccount, rt.ToAccount)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTemplate, c.Type)
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return b.Limit.Validate()
}
