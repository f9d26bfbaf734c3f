package http

import (
	"time"

	"fintrack/internal/core"
)

// Wire representations. Amounts travel as decimal strings (core.Money
// marshals itself); dates as RFC3339, day-granular fields as "2006-01-02".

type transactionPayload struct {
	Date        string               `json:"date,omitempty"`
	Type        core.TransactionType `json:"type"`
	Amount      core.Money           `json:"amount"`
	Category    string               `json:"category"`
	Description string               `json:"description,omitempty"`
	FromAccount string               `json:"from_account,omitempty"`
	ToAccount   string               `json:"to_account,omitempty"`
}

func (p transactionPayload) toDomain() (core.Transaction, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:        date,
		Type:        p.Type,
		Amount:      p.Amount,
		Category:    p.Category,
		Description: p.Description,
		FromAccount: p.FromAccount,
		ToAccount:   p.ToAccount,
	}, nil
}

type transactionResponse struct {
	ID          int64                `json:"id"`
	Date        time.Time            `json:"date"`
	Type        core.TransactionType `json:"type"`
	Amount      core.Money           `json:"amount"`
	Category    string               `json:"category"`
	Description string               `json:"description,omitempty"`
	FromAccount string               `json:"from_account,omitempty"`
	ToAccount   string               `json:"to_account,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Date:        t.Date,
		Type:        t.Type,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		FromAccount: t.FromAccount,
		ToAccount:   t.ToAccount,
	}
}

func toTransactionResponses(ts []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(ts))
	for i, t := range ts {
		out[i] = toTransactionResponse(t)
	}
	return out
}

type accountResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type categoryResponse struct {
	ID   int64                `json:"id"`
	Name string               `json:"name"`
	Type core.TransactionType `json:"type"`
}

type recurringPayload struct {
	DayOfMonth  int                  `json:"day_of_month"`
	Type        core.TransactionType `json:"type"`
	Amount      core.Money           `json:"amount"`
	Category    string               `json:"category"`
	Description string               `json:"description,omitempty"`
	FromAccount string               `json:"from_account,omitempty"`
	ToAccount   string               `json:"to_account,omitempty"`
}

func (p recurringPayload) toDomain() core.RecurringTransaction {
	return core.RecurringTransaction{
		DayOfMonth:  p.DayOfMonth,
		Type:        p.Type,
		Amount:      p.Amount,
		Category:    p.Category,
		Description: p.Description,
		FromAccount: p.FromAccount,
		ToAccount:   p.ToAccount,
	}
}

type recurringResponse struct {
	ID            int64                `json:"id"`
	DayOfMonth    int                  `json:"day_of_month"`
	Type          core.TransactionType `json:"type"`
	Amount        core.Money           `json:"amount"`
	Category      string               `json:"category"`
	Description   string               `json:"description,omitempty"`
	FromAccount   string               `json:"from_account,omitempty"`
	ToAccount     string               `json:"to_account,omitempty"`
	LastProcessed string               `json:"last_processed,omitempty"`
}

func toRecurringResponse(rt core.RecurringTransaction) recurringResponse {
	resp := recurringResponse{
		ID:          rt.ID,
		DayOfMonth:  rt.DayOfMonth,
		Type:        rt.Type,
		Amount:      rt.Amount,
		Category:    rt.Category,
		Description: rt.Description,
		FromAccount: rt.FromAccount,
		ToAccount:   rt.ToAccount,
	}
	if !rt.LastProcessed.IsZero() {
		resp.LastProcessed = core.DayKey(rt.LastProcessed)
	}
	return resp
}

type budgetPayload struct {
	Category string     `json:"category"`
	Limit    core.Money `json:"limit"`
}

type budgetResponse struct {
	ID       int64      `json:"id"`
	Category string     `json:"category"`
	Limit    core.Money `json:"limit"`
}

type budgetStatusResponse struct {
	Category   string     `json:"category"`
	Limit      core.Money `json:"limit"`
	Spent      core.Money `json:"spent"`
	Remaining  core.Money `json:"remaining"`
	OverBudget bool       `json:"over_budget"`
}

type categoryTotalResponse struct {
	Category string     `json:"category"`
	Total    core.Money `json:"total"`
}

type monthTotalResponse struct {
	Month string     `json:"month"`
	Total core.Money `json:"total"`
}

type netWorthPointResponse struct {
	Day   string     `json:"date"`
	Value core.Money `json:"value"`
}
