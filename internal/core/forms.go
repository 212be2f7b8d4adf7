package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Forms carry raw user input. Parse is the input boundary: nothing reaches
// the store or the aggregation functions without passing through it.
type (
	SubscriptionForm struct {
		Name      string `json:"name"`
		Cost      string `json:"cost"`
		Frequency string `json:"frequency"`
	}

	ExpenseForm struct {
		Amount      string     `json:"amount"`
		Category    string     `json:"category"`
		Description string     `json:"description"`
		Timestamp   *time.Time `json:"timestamp,omitempty"`
	}

	InteractionForm struct {
		GuideID         string            `json:"guide_id"`
		InteractionType string            `json:"interaction_type"`
		Metadata        map[string]string `json:"metadata,omitempty"`
	}

	UnlockForm struct {
		Feature         string `json:"feature"`
		TransactionHash string `json:"transaction_hash"`
		AmountPaid      string `json:"amount_paid"`
		Currency        string `json:"currency,omitempty"`
	}
)

// Parse validates the form and returns an active subscription draft owned by
// userID. Id and timestamps are left for the store.
func (f SubscriptionForm) Parse(userID string) (Subscription, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return Subscription{}, ErrEmptyName
	}
	cost, err := ParseAmount(f.Cost)
	if err != nil {
		return Subscription{}, err
	}
	freq, err := ParseFrequency(f.Frequency)
	if err != nil {
		return Subscription{}, err
	}
	s := Subscription{
		UserID:    userID,
		Name:      name,
		Cost:      cost,
		Frequency: freq,
		Status:    StatusActive,
	}
	return s, s.Validate()
}

// Parse validates the form. A nil Timestamp means "now" and is filled in by
// the caller that owns the clock.
func (f ExpenseForm) Parse(userID string) (Expense, error) {
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return Expense{}, err
	}
	cat, err := ParseCategory(f.Category)
	if err != nil {
		return Expense{}, err
	}
	e := Expense{
		UserID:      userID,
		Amount:      amount,
		Category:    cat,
		Description: strings.TrimSpace(f.Description),
	}
	if f.Timestamp != nil {
		e.Timestamp = f.Timestamp.UTC()
	}
	return e, e.Validate()
}

func (f InteractionForm) Parse(userID string) (GuideInteraction, error) {
	g := GuideInteraction{
		UserID:          userID,
		GuideID:         strings.TrimSpace(f.GuideID),
		InteractionType: strings.TrimSpace(f.InteractionType),
		Metadata:        f.Metadata,
	}
	if g.Metadata == nil {
		g.Metadata = map[string]string{}
	}
	return g, g.Validate()
}

func (f UnlockForm) Parse(userID string) (PremiumUnlock, error) {
	amount := decimal.Zero
	if strings.TrimSpace(f.AmountPaid) != "" {
		var err error
		if amount, err = ParseAmount(f.AmountPaid); err != nil {
			return PremiumUnlock{}, err
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(f.Currency))
	if currency == "" {
		currency = DefaultUnlockCurrency
	}
	u := PremiumUnlock{
		UserID:          userID,
		Feature:         strings.TrimSpace(f.Feature),
		TransactionHash: strings.TrimSpace(f.TransactionHash),
		AmountPaid:      amount,
		Currency:        currency,
		Status:          StatusActive,
	}
	return u, u.Validate()
}
