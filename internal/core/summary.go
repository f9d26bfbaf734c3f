package core

import "time"

// CategoryTotal is an amount aggregated under one category name.
type CategoryTotal struct {
	Category string
	Total    Money
}

// MonthTotal is an amount aggregated under one calendar month ("2006-01").
type MonthTotal struct {
	Month string
	Total Money
}

// NetWorthPoint is one entry of the net-worth history.
type NetWorthPoint struct {
	Day   time.Time
	Value Money
}

// BudgetStatus compares month-to-date spend in a category against its budget.
type BudgetStatus struct {
	Category   string
	Limit      Money
	Spent      Money
	Remaining  Money
	OverBudget bool
}
