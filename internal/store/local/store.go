// Package local implements the store ports on top of a key-value blob store.
// Each entity type is one JSON array; filters run in memory after loading
// the whole array.
package local

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"pocketledger/internal/core"
	"pocketledger/internal/store"
)

// Blob keys, one array per entity type.
const (
	KeySubscriptions = "pocket_legal_subscriptions"
	KeyExpenses      = "pocket_legal_expenses"
	KeyInteractions  = "pocket_legal_interactions"
	KeyUnlocks       = "pocket_legal_premium"
	KeyUsers         = "pocket_legal_users"
)

type Store struct {
	subscriptions *collection[core.Subscription]
	expenses      *collection[core.Expense]
	interactions  *collection[core.GuideInteraction]
	unlocks       *collection[core.PremiumUnlock]
	users         *collection[core.User]
	now           func() time.Time
	newID         func() string
}

// Ensure interface conformance
var (
	_ store.SubscriptionStore = (*Store)(nil)
	_ store.ExpenseStore      = (*Store)(nil)
	_ store.InteractionStore  = (*Store)(nil)
	_ store.UnlockStore       = (*Store)(nil)
	_ store.UserStore         = (*Store)(nil)
)

type Option func(*Store)

// WithClock overrides the time source used for store-assigned timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(blobs BlobStore, opts ...Option) *Store {
	s := &Store{
		subscriptions: newCollection[core.Subscription](blobs, KeySubscriptions),
		expenses:      newCollection[core.Expense](blobs, KeyExpenses),
		interactions:  newCollection[core.GuideInteraction](blobs, KeyInteractions),
		unlocks:       newCollection[core.PremiumUnlock](blobs, KeyUnlocks),
		users:         newCollection[core.User](blobs, KeyUsers),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t.UTC()
}

func (s *Store) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	sub.ID = s.newID()
	sub.CreatedAt = s.stamp(sub.CreatedAt)
	sub.UpdatedAt = sub.CreatedAt
	if sub.Status == "" {
		sub.Status = core.StatusActive
	}
	err := s.subscriptions.update(ctx, func(items []core.Subscription) ([]core.Subscription, error) {
		return append(items, sub), nil
	})
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) ListSubscriptions(ctx context.Context, userID string, f store.SubscriptionFilter) ([]core.Subscription, error) {
	items, err := s.subscriptions.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	out := make([]core.Subscription, 0, len(items))
	for _, it := range items {
		if it.UserID != userID {
			continue
		}
		if !f.IncludeInactive && !it.IsActive() {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SoftDeleteSubscription(ctx context.Context, userID, id string) (core.Subscription, error) {
	var deleted core.Subscription
	err := s.subscriptions.update(ctx, func(items []core.Subscription) ([]core.Subscription, error) {
		for i := range items {
			if items[i].ID == id && items[i].UserID == userID {
				items[i].Status = core.StatusInactive
				items[i].UpdatedAt = s.now().UTC()
				deleted = items[i]
				return items, nil
			}
		}
		return nil, core.ErrNotFound
	})
	if err != nil {
		return core.Subscription{}, fmt.Errorf("soft delete subscription %s: %w", id, err)
	}
	return deleted, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = s.newID()
	e.CreatedAt = s.stamp(e.CreatedAt)
	if e.Timestamp.IsZero() {
		e.Timestamp = e.CreatedAt
	}
	e.Timestamp = e.Timestamp.UTC()
	err := s.expenses.update(ctx, func(items []core.Expense) ([]core.Expense, error) {
		return append(items, e), nil
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (s *Store) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	items, err := s.expenses.all(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	for _, it := range items {
		if it.ID == id && it.UserID == userID {
			return it, nil
		}
	}
	return core.Expense{}, fmt.Errorf("get expense %s: %w", id, core.ErrNotFound)
}

func (s *Store) ListExpenses(ctx context.Context, userID string, f store.ExpenseFilter) ([]core.Expense, error) {
	items, err := s.expenses.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(items))
	for _, it := range items {
		if it.UserID != userID {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		out = append(out, it)
	}
	sortExpenses(out)
	if limit := f.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]core.Expense, error) {
	items, err := s.expenses.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("expenses in range: %w", err)
	}
	out := make([]core.Expense, 0)
	for _, it := range items {
		if it.UserID != userID {
			continue
		}
		if it.Timestamp.Before(start) || it.Timestamp.After(end) {
			continue
		}
		out = append(out, it)
	}
	sortExpenses(out)
	return out, nil
}

func sortExpenses(es []core.Expense) {
	sort.SliceStable(es, func(i, j int) bool {
		if !es[i].Timestamp.Equal(es[j].Timestamp) {
			return es[i].Timestamp.After(es[j].Timestamp)
		}
		return es[i].CreatedAt.After(es[j].CreatedAt)
	})
}

func (s *Store) CreateInteraction(ctx context.Context, g core.GuideInteraction) (core.GuideInteraction, error) {
	g.ID = s.newID()
	g.CreatedAt = s.stamp(g.CreatedAt)
	if g.Metadata == nil {
		g.Metadata = map[string]string{}
	}
	err := s.interactions.update(ctx, func(items []core.GuideInteraction) ([]core.GuideInteraction, error) {
		return append(items, g), nil
	})
	if err != nil {
		return core.GuideInteraction{}, fmt.Errorf("create interaction: %w", err)
	}
	return g, nil
}

func (s *Store) ListInteractions(ctx context.Context, userID string, f store.InteractionFilter) ([]core.GuideInteraction, error) {
	items, err := s.interactions.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	out := make([]core.GuideInteraction, 0, len(items))
	for _, it := range items {
		if it.UserID != userID {
			continue
		}
		if f.GuideID != "" && it.GuideID != f.GuideID {
			continue
		}
		if f.Type != "" && it.InteractionType != f.Type {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateUnlock(ctx context.Context, u core.PremiumUnlock) (core.PremiumUnlock, error) {
	u.ID = s.newID()
	u.UnlockedAt = s.stamp(u.UnlockedAt)
	if u.Status == "" {
		u.Status = core.StatusActive
	}
	err := s.unlocks.update(ctx, func(items []core.PremiumUnlock) ([]core.PremiumUnlock, error) {
		return append(items, u), nil
	})
	if err != nil {
		return core.PremiumUnlock{}, fmt.Errorf("create unlock: %w", err)
	}
	return u, nil
}

func (s *Store) ListUnlocks(ctx context.Context, userID string, f store.UnlockFilter) ([]core.PremiumUnlock, error) {
	items, err := s.unlocks.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	out := make([]core.PremiumUnlock, 0, len(items))
	for _, it := range items {
		if it.UserID != userID {
			continue
		}
		if !f.IncludeInactive && !it.IsActive() {
			continue
		}
		if f.Feature != "" && it.Feature != f.Feature {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UnlockedAt.After(out[j].UnlockedAt) })
	return out, nil
}

func (s *Store) RevokeUnlock(ctx context.Context, userID, id string) (core.PremiumUnlock, error) {
	var revoked core.PremiumUnlock
	err := s.unlocks.update(ctx, func(items []core.PremiumUnlock) ([]core.PremiumUnlock, error) {
		for i := range items {
			if items[i].ID == id && items[i].UserID == userID {
				items[i].Status = core.StatusInactive
				revoked = items[i]
				return items, nil
			}
		}
		return nil, core.ErrNotFound
	})
	if err != nil {
		return core.PremiumUnlock{}, fmt.Errorf("revoke unlock %s: %w", id, err)
	}
	return revoked, nil
}

func (s *Store) UpsertUser(ctx context.Context, u core.User) (core.User, error) {
	var saved core.User
	err := s.users.update(ctx, func(items []core.User) ([]core.User, error) {
		for i := range items {
			if items[i].FID == u.FID {
				u.ID = items[i].ID
				u.CreatedAt = items[i].CreatedAt
				items[i] = u
				saved = u
				return items, nil
			}
		}
		u.ID = s.newID()
		u.CreatedAt = s.stamp(u.CreatedAt)
		saved = u
		return append(items, u), nil
	})
	if err != nil {
		return core.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return saved, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	items, err := s.users.all(ctx)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return core.User{}, fmt.Errorf("get user %s: %w", id, core.ErrNotFound)
}
