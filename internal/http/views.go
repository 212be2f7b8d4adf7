package http

import (
	"time"

	"pocketledger/internal/core"
)

// Views render money with two fractional digits. Records keep full precision.

type subscriptionView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cost      string    `json:"cost"`
	Frequency string    `json:"frequency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewSubscription(s core.Subscription) subscriptionView {
	return subscriptionView{
		ID:        s.ID,
		Name:      s.Name,
		Cost:      core.FormatAmount(s.Cost),
		Frequency: string(s.Frequency),
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type expenseView struct {
	ID          string    `json:"id"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"created_at"`
}

func viewExpense(e core.Expense) expenseView {
	return expenseView{
		ID:          e.ID,
		Amount:      core.FormatAmount(e.Amount),
		Category:    string(e.Category),
		Description: e.Description,
		Timestamp:   e.Timestamp,
		CreatedAt:   e.CreatedAt,
	}
}

type unlockView struct {
	ID              string    `json:"id"`
	Feature         string    `json:"feature"`
	TransactionHash string    `json:"transaction_hash"`
	AmountPaid      string    `json:"amount_paid"`
	Currency        string    `json:"currency"`
	UnlockedAt      time.Time `json:"unlocked_at"`
	Status          string    `json:"status"`
}

func viewUnlock(u core.PremiumUnlock) unlockView {
	return unlockView{
		ID:              u.ID,
		Feature:         u.Feature,
		TransactionHash: u.TransactionHash,
		AmountPaid:      u.AmountPaid.String(),
		Currency:        u.Currency,
		UnlockedAt:      u.UnlockedAt,
		Status:          string(u.Status),
	}
}

type amountView struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type dayView struct {
	Day   string `json:"day"`
	Date  string `json:"date"`
	Total string `json:"total"`
}

type summaryView struct {
	MonthlyRecurring string       `json:"monthly_recurring"`
	Today            string       `json:"today"`
	Trailing         []dayView    `json:"trailing"`
	ByCategory       []amountView `json:"by_category"`
	BySubscription   []amountView `json:"by_subscription"`
}

func viewSummary(s core.Summary) summaryView {
	out := summaryView{
		MonthlyRecurring: core.FormatAmount(s.MonthlyRecurring),
		Today:            core.FormatAmount(s.Today),
		Trailing:         make([]dayView, len(s.Trailing)),
		ByCategory:       viewAmounts(s.ByCategory),
		BySubscription:   viewAmounts(s.BySubscription),
	}
	for i, d := range s.Trailing {
		out.Trailing[i] = dayView{Day: d.Day, Date: d.Date, Total: core.FormatAmount(d.Total)}
	}
	return out
}

func viewAmounts(in []core.NameAmount) []amountView {
	out := make([]amountView, len(in))
	for i, a := range in {
		out[i] = amountView{Name: a.Name, Amount: core.FormatAmount(a.Amount)}
	}
	return out
}

func viewAll[T, V any](view func(T) V) func([]T) []V {
	return func(in []T) []V {
		out := make([]V, len(in))
		for i, v := range in {
			out[i] = view(v)
		}
		return out
	}
}
