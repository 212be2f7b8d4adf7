package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	Food           Category = "food"
	Transportation Category = "transportation"
	Entertainment  Category = "entertainment"
	Shopping       Category = "shopping"
	Utilities      Category = "utilities"
	Other          Category = "other"
)

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

// InteractionSave marks a guide bookmarked by the user.
const InteractionSave = "save"

// DefaultUnlockCurrency is recorded when a payment confirmation omits one.
const DefaultUnlockCurrency = "ETH"

type (
	Frequency string
	Category  string

	// Status is the lifecycle tag shared by subscriptions and unlocks.
	Status string

	Subscription struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id"`
		Name      string          `json:"name"`
		Cost      decimal.Decimal `json:"cost"`
		Frequency Frequency       `json:"frequency"`
		Status    Status          `json:"status"`
		CreatedAt time.Time       `json:"created_at"`
		UpdatedAt time.Time       `json:"updated_at"`
	}

	Expense struct {
		ID          string          `json:"id"`
		UserID      string          `json:"user_id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    Category        `json:"category"`
		Description string          `json:"description"`
		Timestamp   time.Time       `json:"timestamp"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	GuideInteraction struct {
		ID              string            `json:"id"`
		UserID          string            `json:"user_id"`
		GuideID         string            `json:"guide_id"`
		InteractionType string            `json:"interaction_type"`
		Metadata        map[string]string `json:"metadata"`
		CreatedAt       time.Time         `json:"created_at"`
	}

	PremiumUnlock struct {
		ID              string          `json:"id"`
		UserID          string          `json:"user_id"`
		Feature         string          `json:"feature"`
		TransactionHash string          `json:"transaction_hash"`
		AmountPaid      decimal.Decimal `json:"amount_paid"`
		Currency        string          `json:"currency"`
		UnlockedAt      time.Time       `json:"unlocked_at"`
		Status          Status          `json:"status"`
	}

	// User is the local account created from a social-identity profile.
	User struct {
		ID             string    `json:"id"`
		FID            int64     `json:"fid"`
		Username       string    `json:"username"`
		DisplayName    string    `json:"display_name"`
		PfpURL         string    `json:"pfp_url"`
		Bio            string    `json:"bio"`
		FollowerCount  int64     `json:"follower_count"`
		FollowingCount int64     `json:"following_count"`
		WalletAddress  string    `json:"wallet_address,omitempty"`
		Currency       string    `json:"currency"`
		CreatedAt      time.Time `json:"created_at"`
	}
)

// Frequencies returns every accepted billing frequency.
func Frequencies() []Frequency {
	return []Frequency{Monthly, Yearly}
}

// Categories returns every accepted expense category.
func Categories() []Category {
	return []Category{Food, Transportation, Entertainment, Shopping, Utilities, Other}
}

func (f Frequency) IsValid() bool {
	switch f {
	case Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (c Category) IsValid() bool {
	switch c {
	case Food, Transportation, Entertainment, Shopping, Utilities, Other:
		return true
	default:
		return false
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	default:
		return false
	}
}

// ParseFrequency is strict: values are not trimmed or case folded.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.IsValid() {
		return "", ErrInvalidFrequency
	}
	return f, nil
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// IsActive reports whether the subscription counts toward recurring totals.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (u PremiumUnlock) IsActive() bool {
	return u.Status == StatusActive
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(s.Name) > 100 {
		return ErrNameTooLong
	}
	if s.Cost.IsNegative() {
		return ErrInvalidAmount
	}
	if !s.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if !s.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrMissingUser
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if utf8.RuneCountInString(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (g GuideInteraction) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(g.GuideID) == "" {
		return ErrEmptyGuide
	}
	if strings.TrimSpace(g.InteractionType) == "" {
		return ErrEmptyInteraction
	}
	return nil
}

func (u PremiumUnlock) Validate() error {
	if strings.TrimSpace(u.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(u.Feature) == "" {
		return ErrEmptyFeature
	}
	if strings.TrimSpace(u.TransactionHash) == "" {
		return ErrEmptyTransaction
	}
	if u.AmountPaid.IsNegative() {
		return ErrInvalidAmount
	}
	if !u.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
