// Package store declares the persistence ports implemented by every backend.
//
// All methods take an explicit user id. Mutations that target a record the
// user does not own return core.ErrNotFound, the same as an absent record.
package store

import (
	"context"
	"time"

	"pocketledger/internal/core"
)

// DefaultExpenseLimit caps ListExpenses when the filter does not set a limit.
const DefaultExpenseLimit = 100

// Ports for outbound adapters.
type (
	SubscriptionStore interface {
		CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
		// ListSubscriptions returns newest first by creation time.
		ListSubscriptions(ctx context.Context, userID string, f SubscriptionFilter) ([]core.Subscription, error)
		SoftDeleteSubscription(ctx context.Context, userID, id string) (core.Subscription, error)
	}

	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
		// ListExpenses returns newest first by occurrence time.
		ListExpenses(ctx context.Context, userID string, f ExpenseFilter) ([]core.Expense, error)
		// ExpensesInRange uses inclusive bounds on the occurrence time.
		ExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]core.Expense, error)
	}

	InteractionStore interface {
		CreateInteraction(ctx context.Context, g core.GuideInteraction) (core.GuideInteraction, error)
		ListInteractions(ctx context.Context, userID string, f InteractionFilter) ([]core.GuideInteraction, error)
	}

	UnlockStore interface {
		CreateUnlock(ctx context.Context, u core.PremiumUnlock) (core.PremiumUnlock, error)
		ListUnlocks(ctx context.Context, userID string, f UnlockFilter) ([]core.PremiumUnlock, error)
		RevokeUnlock(ctx context.Context, userID, id string) (core.PremiumUnlock, error)
	}

	UserStore interface {
		// UpsertUser inserts or refreshes the profile keyed by FID and keeps
		// the original id and creation time of an existing user.
		UpsertUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id string) (core.User, error)
	}
)

type (
	SubscriptionFilter struct {
		IncludeInactive bool
	}

	ExpenseFilter struct {
		Category core.Category
		Limit    int
	}

	InteractionFilter struct {
		GuideID string
		Type    string
	}

	UnlockFilter struct {
		Feature         string
		IncludeInactive bool
	}
)

// EffectiveLimit returns the limit to apply, falling back to DefaultExpenseLimit.
func (f ExpenseFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultExpenseLimit
	}
	return f.Limit
}
