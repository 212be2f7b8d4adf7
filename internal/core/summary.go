package core

import "github.com/shopspring/decimal"

// NameAmount is an amount aggregated under a category or subscription name.
type NameAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// DayTotal is one slot of a trailing daily spend series.
type DayTotal struct {
	Day   string          `json:"day"`
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// Summary is the dashboard view derived from a user's records.
type Summary struct {
	MonthlyRecurring decimal.Decimal `json:"monthly_recurring"`
	Today            decimal.Decimal `json:"today"`
	Trailing         []DayTotal      `json:"trailing"`
	ByCategory       []NameAmount    `json:"by_category"`
	BySubscription   []NameAmount    `json:"by_subscription"`
}
