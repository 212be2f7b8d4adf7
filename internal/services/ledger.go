// Package services provides business logic and orchestration services.
//
// LedgerService is the only caller of the persistence backend. It parses raw
// input, stamps timestamps from its clock, scopes every call to an explicit
// user id and turns each outcome into a core.Result.
package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pocketledger/internal/backend"
	"pocketledger/internal/budget"
	"pocketledger/internal/core"
	"pocketledger/internal/log"
	"pocketledger/internal/store"
)

const (
	DefaultSummaryDays = 7
	MaxSummaryDays     = 90
)

// EventPublisher announces stored expenses. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, userID, id string) error
}

type LedgerService struct {
	backend   backend.Backend
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*LedgerService)

// WithPublisher enables expense.created events. A nil publisher disables them.
func WithPublisher(p EventPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func NewLedgerService(b backend.Backend, opts ...Option) *LedgerService {
	s := &LedgerService{
		backend: b,
		logger:  log.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrMissingUser
	}
	return nil
}

func requireIDs(userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return core.ErrMissingID
	}
	return nil
}

// result logs backend failures and wraps the outcome. Validation and
// not-found failures are expected and stay at debug.
func result[T any](ctx context.Context, s *LedgerService, op, userID string, data T, err error) core.Result[T] {
	if err == nil {
		return core.OK(data)
	}
	res := core.Fail[T](err)
	fields := log.NewFields().WithOperation(op).WithUser(userID).WithError(err)
	fields[log.FieldErrorKind] = string(res.Kind)
	if res.Kind == core.KindBackend {
		s.logger.ErrorContext(ctx, "Ledger operation failed", fields.ToSlice()...)
	} else {
		s.logger.DebugContext(ctx, "Ledger operation rejected", fields.ToSlice()...)
	}
	return res
}

// Subscriptions

func (s *LedgerService) CreateSubscription(ctx context.Context, userID string, form core.SubscriptionForm) core.Result[core.Subscription] {
	sub, err := s.createSubscription(ctx, userID, form)
	return result(ctx, s, "create_subscription", userID, sub, err)
}

func (s *LedgerService) createSubscription(ctx context.Context, userID string, form core.SubscriptionForm) (core.Subscription, error) {
	if err := requireUser(userID); err != nil {
		return core.Subscription{}, err
	}
	sub, err := form.Parse(userID)
	if err != nil {
		return core.Subscription{}, err
	}
	now := s.now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	return s.backend.CreateSubscription(ctx, sub)
}

func (s *LedgerService) ListSubscriptions(ctx context.Context, userID string, includeInactive bool) core.Result[[]core.Subscription] {
	if err := requireUser(userID); err != nil {
		return result[[]core.Subscription](ctx, s, "list_subscriptions", userID, nil, err)
	}
	subs, err := s.backend.ListSubscriptions(ctx, userID, store.SubscriptionFilter{IncludeInactive: includeInactive})
	return result(ctx, s, "list_subscriptions", userID, subs, err)
}

// DeleteSubscription soft-deletes: the record stays, marked inactive.
func (s *LedgerService) DeleteSubscription(ctx context.Context, userID, id string) core.Result[core.Subscription] {
	if err := requireIDs(userID, id); err != nil {
		return result(ctx, s, "delete_subscription", userID, core.Subscription{}, err)
	}
	sub, err := s.backend.SoftDeleteSubscription(ctx, userID, id)
	return result(ctx, s, "delete_subscription", userID, sub, err)
}

// Expenses

// CreateExpense stores the expense and, when a publisher is configured,
// announces it. A failed publish is logged and does not fail the call.
func (s *LedgerService) CreateExpense(ctx context.Context, userID string, form core.ExpenseForm) core.Result[core.Expense] {
	e, err := s.createExpense(ctx, userID, form)
	if err == nil {
		s.publishExpense(ctx, e)
	}
	return result(ctx, s, "create_expense", userID, e, err)
}

func (s *LedgerService) createExpense(ctx context.Context, userID string, form core.ExpenseForm) (core.Expense, error) {
	if err := requireUser(userID); err != nil {
		return core.Expense{}, err
	}
	e, err := form.Parse(userID)
	if err != nil {
		return core.Expense{}, err
	}
	now := s.now().UTC()
	e.CreatedAt = now
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return s.backend.CreateExpense(ctx, e)
}

func (s *LedgerService) publishExpense(ctx context.Context, e core.Expense) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseCreated(ctx, e.UserID, e.ID); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish expense event",
			log.NewFields().WithOperation(log.OpPublish).WithUser(e.UserID).WithRecord(e.ID).WithError(err).ToSlice()...)
		return
	}
	s.logger.DebugContext(ctx, "Published expense event",
		log.NewFields().WithExpense(e.ID, e.Amount, string(e.Category)).ToSlice()...)
}

func (s *LedgerService) GetExpense(ctx context.Context, userID, id string) core.Result[core.Expense] {
	if err := requireIDs(userID, id); err != nil {
		return result(ctx, s, "get_expense", userID, core.Expense{}, err)
	}
	e, err := s.backend.GetExpense(ctx, userID, id)
	return result(ctx, s, "get_expense", userID, e, err)
}

func (s *LedgerService) ListExpenses(ctx context.Context, userID string, f store.ExpenseFilter) core.Result[[]core.Expense] {
	if err := requireUser(userID); err != nil {
		return result[[]core.Expense](ctx, s, "list_expenses", userID, nil, err)
	}
	if f.Category != "" && !f.Category.IsValid() {
		return result[[]core.Expense](ctx, s, "list_expenses", userID, nil, core.ErrInvalidCategory)
	}
	es, err := s.backend.ListExpenses(ctx, userID, f)
	return result(ctx, s, "list_expenses", userID, es, err)
}

// ExpensesInRange returns expenses with start <= timestamp <= end.
func (s *LedgerService) ExpensesInRange(ctx context.Context, userID string, start, end time.Time) core.Result[[]core.Expense] {
	if err := requireUser(userID); err != nil {
		return result[[]core.Expense](ctx, s, "expenses_in_range", userID, nil, err)
	}
	if start.After(end) {
		return result[[]core.Expense](ctx, s, "expenses_in_range", userID, nil, core.ErrInvalidRange)
	}
	es, err := s.backend.ExpensesInRange(ctx, userID, start, end)
	return result(ctx, s, "expenses_in_range", userID, es, err)
}

// Guide interactions

func (s *LedgerService) RecordInteraction(ctx context.Context, userID string, form core.InteractionForm) core.Result[core.GuideInteraction] {
	g, err := func() (core.GuideInteraction, error) {
		if err := requireUser(userID); err != nil {
			return core.GuideInteraction{}, err
		}
		g, err := form.Parse(userID)
		if err != nil {
			return core.GuideInteraction{}, err
		}
		g.CreatedAt = s.now().UTC()
		return s.backend.CreateInteraction(ctx, g)
	}()
	return result(ctx, s, "record_interaction", userID, g, err)
}

func (s *LedgerService) ListInteractions(ctx context.Context, userID string, f store.InteractionFilter) core.Result[[]core.GuideInteraction] {
	if err := requireUser(userID); err != nil {
		return result[[]core.GuideInteraction](ctx, s, "list_interactions", userID, nil, err)
	}
	gs, err := s.backend.ListInteractions(ctx, userID, f)
	return result(ctx, s, "list_interactions", userID, gs, err)
}

// SavedGuides returns the distinct guide ids the user saved, most recent first.
func (s *LedgerService) SavedGuides(ctx context.Context, userID string) core.Result[[]string] {
	res := s.ListInteractions(ctx, userID, store.InteractionFilter{Type: core.InteractionSave})
	if !res.Success {
		return core.Result[[]string]{Error: res.Error, Kind: res.Kind}
	}
	seen := make(map[string]bool, len(res.Data))
	ids := make([]string, 0, len(res.Data))
	for _, g := range res.Data {
		if seen[g.GuideID] {
			continue
		}
		seen[g.GuideID] = true
		ids = append(ids, g.GuideID)
	}
	return core.OK(ids)
}

// Premium unlocks

// ConfirmUnlock records a settled payment. A transaction hash already on
// file for the feature returns the existing unlock, active or not, so a
// redelivered confirmation never creates a second record.
func (s *LedgerService) ConfirmUnlock(ctx context.Context, userID string, form core.UnlockForm) core.Result[core.PremiumUnlock] {
	u, err := func() (core.PremiumUnlock, error) {
		if err := requireUser(userID); err != nil {
			return core.PremiumUnlock{}, err
		}
		parsed, err := form.Parse(userID)
		if err != nil {
			return core.PremiumUnlock{}, err
		}
		existing, err := s.backend.ListUnlocks(ctx, userID, store.UnlockFilter{Feature: parsed.Feature, IncludeInactive: true})
		if err != nil {
			return core.PremiumUnlock{}, err
		}
		for _, u := range existing {
			if u.TransactionHash == parsed.TransactionHash {
				return u, nil
			}
		}
		parsed.UnlockedAt = s.now().UTC()
		return s.backend.CreateUnlock(ctx, parsed)
	}()
	return result(ctx, s, "confirm_unlock", userID, u, err)
}

func (s *LedgerService) ListUnlocks(ctx context.Context, userID string, f store.UnlockFilter) core.Result[[]core.PremiumUnlock] {
	if err := requireUser(userID); err != nil {
		return result[[]core.PremiumUnlock](ctx, s, "list_unlocks", userID, nil, err)
	}
	us, err := s.backend.ListUnlocks(ctx, userID, f)
	return result(ctx, s, "list_unlocks", userID, us, err)
}

func (s *LedgerService) RevokeUnlock(ctx context.Context, userID, id string) core.Result[core.PremiumUnlock] {
	if err := requireIDs(userID, id); err != nil {
		return result(ctx, s, "revoke_unlock", userID, core.PremiumUnlock{}, err)
	}
	u, err := s.backend.RevokeUnlock(ctx, userID, id)
	return result(ctx, s, "revoke_unlock", userID, u, err)
}

// HasUnlock reports whether the user holds an active unlock for feature.
func (s *LedgerService) HasUnlock(ctx context.Context, userID, feature string) core.Result[bool] {
	if strings.TrimSpace(feature) == "" {
		return result(ctx, s, "has_unlock", userID, false, core.ErrEmptyFeature)
	}
	res := s.ListUnlocks(ctx, userID, store.UnlockFilter{Feature: feature})
	if !res.Success {
		return core.Result[bool]{Error: res.Error, Kind: res.Kind}
	}
	return core.OK(len(res.Data) > 0)
}

// Users

// UpsertUser stores the profile keyed by its FID.
func (s *LedgerService) UpsertUser(ctx context.Context, u core.User) core.Result[core.User] {
	if u.FID <= 0 {
		return result(ctx, s, "upsert_user", "", core.User{}, core.ErrInvalidFID)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	saved, err := s.backend.UpsertUser(ctx, u)
	return result(ctx, s, "upsert_user", saved.ID, saved, err)
}

func (s *LedgerService) GetUser(ctx context.Context, userID string) core.Result[core.User] {
	if err := requireUser(userID); err != nil {
		return result(ctx, s, "get_user", userID, core.User{}, err)
	}
	u, err := s.backend.GetUser(ctx, userID)
	return result(ctx, s, "get_user", userID, u, err)
}

// Summary

// Summary loads active subscriptions and the trailing window's expenses
// concurrently and runs the aggregation over them. Days are computed in loc;
// a nil loc means UTC.
func (s *LedgerService) Summary(ctx context.Context, userID string, days int, loc *time.Location) core.Result[core.Summary] {
	sum, err := s.summary(ctx, userID, days, loc)
	return result(ctx, s, log.OpSummary, userID, sum, err)
}

func (s *LedgerService) summary(ctx context.Context, userID string, days int, loc *time.Location) (core.Summary, error) {
	if err := requireUser(userID); err != nil {
		return core.Summary{}, err
	}
	if days <= 0 {
		days = DefaultSummaryDays
	}
	if days > MaxSummaryDays {
		days = MaxSummaryDays
	}
	if loc == nil {
		loc = time.UTC
	}

	ref := s.now().In(loc)
	y, m, d := ref.Date()
	start := time.Date(y, m, d-(days-1), 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)

	var (
		subs     []core.Subscription
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subs, err = s.backend.ListSubscriptions(gctx, userID, store.SubscriptionFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.backend.ExpensesInRange(gctx, userID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	return budget.Summarize(subs, expenses, ref, days), nil
}
