package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketledger/internal/core"
	"pocketledger/internal/store"
	"pocketledger/internal/store/local"
)

type recordingPublisher struct {
	calls []string
	err   error
}

func (p *recordingPublisher) PublishExpenseCreated(_ context.Context, userID, id string) error {
	p.calls = append(p.calls, userID+"/"+id)
	return p.err
}

var fixedNow = time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

func newLedger(t *testing.T, opts ...Option) (*LedgerService, *local.Store) {
	t.Helper()
	st := local.New(local.NewMemoryBlobs())
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewLedgerService(st, opts...), st
}

func TestCreateExpenseRejectsInvalidAmount(t *testing.T) {
	pub := &recordingPublisher{}
	svc, st := newLedger(t, WithPublisher(pub))
	ctx := context.Background()

	res := svc.CreateExpense(ctx, "u1", core.ExpenseForm{Amount: "abc", Category: "food"})
	assert.False(t, res.Success)
	assert.Equal(t, core.KindValidation, res.Kind)
	assert.NotEmpty(t, res.Error)

	stored, err := st.ListExpenses(ctx, "u1", store.ExpenseFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored, "no record may be created")
	assert.Empty(t, pub.calls, "no event for a rejected expense")
}

func TestCreateExpense(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newLedger(t, WithPublisher(pub))
	ctx := context.Background()

	res := svc.CreateExpense(ctx, "u1", core.ExpenseForm{Amount: "12,50", Category: "food", Description: " lunch "})
	require.True(t, res.Success, res.Error)
	e := res.Data
	assert.NotEmpty(t, e.ID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(e.Amount))
	assert.Equal(t, "lunch", e.Description)
	assert.True(t, e.Timestamp.Equal(fixedNow), "timestamp defaults to now")
	assert.Equal(t, []string{"u1/" + e.ID}, pub.calls)

	t.Run("publish failure does not fail the call", func(t *testing.T) {
		pub.err = errors.New("broker down")
		res := svc.CreateExpense(ctx, "u1", core.ExpenseForm{Amount: "1", Category: "other"})
		assert.True(t, res.Success)
	})

	t.Run("explicit timestamp is kept", func(t *testing.T) {
		at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.FixedZone("CEST", 2*3600))
		res := svc.CreateExpense(ctx, "u1", core.ExpenseForm{Amount: "3", Category: "shopping", Timestamp: &at})
		require.True(t, res.Success)
		assert.True(t, res.Data.Timestamp.Equal(at))
	})

	t.Run("missing user", func(t *testing.T) {
		res := svc.CreateExpense(ctx, " ", core.ExpenseForm{Amount: "3", Category: "food"})
		assert.False(t, res.Success)
		assert.Equal(t, core.KindValidation, res.Kind)
	})

	t.Run("unknown category", func(t *testing.T) {
		res := svc.CreateExpense(ctx, "u1", core.ExpenseForm{Amount: "3", Category: "Food"})
		assert.Equal(t, core.KindValidation, res.Kind)
	})
}

func TestSubscriptionsAndSummary(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	netflix := svc.CreateSubscription(ctx, "u1", core.SubscriptionForm{Name: "Netflix", Cost: "15.99", Frequency: "monthly"})
	require.True(t, netflix.Success, netflix.Error)
	prime := svc.CreateSubscription(ctx, "u1", core.SubscriptionForm{Name: "Amazon Prime", Cost: "139", Frequency: "yearly"})
	require.True(t, prime.Success, prime.Error)

	bad := svc.CreateSubscription(ctx, "u1", core.SubscriptionForm{Name: "Gym", Cost: "30", Frequency: "weekly"})
	assert.Equal(t, core.KindValidation, bad.Kind)

	for _, f := range []core.ExpenseForm{
		{Amount: "5", Category: "food", Timestamp: ptr(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))},
		{Amount: "10", Category: "shopping", Timestamp: ptr(time.Date(2025, 6, 15, 17, 30, 0, 0, time.UTC))},
		{Amount: "20", Category: "food", Timestamp: ptr(time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC))},
		{Amount: "99", Category: "food", Timestamp: ptr(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))},
	} {
		require.True(t, svc.CreateExpense(ctx, "u1", f).Success)
	}

	sum := svc.Summary(ctx, "u1", 7, time.UTC)
	require.True(t, sum.Success, sum.Error)
	assert.Equal(t, "27.57", core.FormatAmount(sum.Data.MonthlyRecurring))
	assert.True(t, decimal.NewFromInt(15).Equal(sum.Data.Today))
	require.Len(t, sum.Data.Trailing, 7)
	assert.True(t, decimal.NewFromInt(20).Equal(sum.Data.Trailing[5].Total))
	require.NotEmpty(t, sum.Data.ByCategory)
	assert.Equal(t, "food", sum.Data.ByCategory[0].Name)
	assert.True(t, decimal.NewFromInt(25).Equal(sum.Data.ByCategory[0].Amount), "out-of-window expense excluded")

	del := svc.DeleteSubscription(ctx, "u1", prime.Data.ID)
	require.True(t, del.Success)
	sum = svc.Summary(ctx, "u1", 0, nil)
	require.True(t, sum.Success)
	assert.True(t, decimal.RequireFromString("15.99").Equal(sum.Data.MonthlyRecurring))
	assert.Len(t, sum.Data.Trailing, DefaultSummaryDays)

	t.Run("cross-user delete is not found", func(t *testing.T) {
		res := svc.DeleteSubscription(ctx, "u2", netflix.Data.ID)
		assert.False(t, res.Success)
		assert.Equal(t, core.KindNotFound, res.Kind)
	})

	t.Run("include inactive", func(t *testing.T) {
		active := svc.ListSubscriptions(ctx, "u1", false)
		all := svc.ListSubscriptions(ctx, "u1", true)
		assert.Len(t, active.Data, 1)
		assert.Len(t, all.Data, 2)
	})
}

func TestExpenseQueries(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	res := svc.ListExpenses(ctx, "u1", store.ExpenseFilter{Category: "groceries"})
	assert.Equal(t, core.KindValidation, res.Kind)

	rng := svc.ExpensesInRange(ctx, "u1", fixedNow, fixedNow.Add(-time.Hour))
	assert.Equal(t, core.KindValidation, rng.Kind)

	get := svc.GetExpense(ctx, "u1", "missing")
	assert.Equal(t, core.KindNotFound, get.Kind)

	get = svc.GetExpense(ctx, "u1", "")
	assert.Equal(t, core.KindValidation, get.Kind)
}

func TestInteractionsAndUnlocks(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	for _, g := range []string{"tenant", "police_stop", "tenant"} {
		res := svc.RecordInteraction(ctx, "u1", core.InteractionForm{GuideID: g, InteractionType: core.InteractionSave})
		require.True(t, res.Success, res.Error)
	}
	require.True(t, svc.RecordInteraction(ctx, "u1", core.InteractionForm{GuideID: "tenant", InteractionType: "share"}).Success)

	empty := svc.RecordInteraction(ctx, "u1", core.InteractionForm{GuideID: "tenant"})
	assert.Equal(t, core.KindValidation, empty.Kind)

	saved := svc.SavedGuides(ctx, "u1")
	require.True(t, saved.Success)
	assert.ElementsMatch(t, []string{"tenant", "police_stop"}, saved.Data)

	has := svc.HasUnlock(ctx, "u1", "ai_assistant")
	require.True(t, has.Success)
	assert.False(t, has.Data)

	unlock := svc.ConfirmUnlock(ctx, "u1", core.UnlockForm{Feature: "ai_assistant", TransactionHash: "0xabc", AmountPaid: "0.01"})
	require.True(t, unlock.Success, unlock.Error)
	assert.Equal(t, core.DefaultUnlockCurrency, unlock.Data.Currency)

	assert.True(t, svc.HasUnlock(ctx, "u1", "ai_assistant").Data)

	revoked := svc.RevokeUnlock(ctx, "u1", unlock.Data.ID)
	require.True(t, revoked.Success)
	assert.False(t, svc.HasUnlock(ctx, "u1", "ai_assistant").Data)

	assert.Equal(t, core.KindValidation, svc.HasUnlock(ctx, "u1", "").Kind)
}

func TestConfirmUnlockIsIdempotentByTransaction(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()
	form := core.UnlockForm{Feature: "ai_assistant", TransactionHash: "0xabc", AmountPaid: "0.01"}

	first := svc.ConfirmUnlock(ctx, "u1", form)
	require.True(t, first.Success, first.Error)
	again := svc.ConfirmUnlock(ctx, "u1", form)
	require.True(t, again.Success, again.Error)
	assert.Equal(t, first.Data.ID, again.Data.ID)

	require.True(t, svc.RevokeUnlock(ctx, "u1", first.Data.ID).Success)
	redelivered := svc.ConfirmUnlock(ctx, "u1", form)
	require.True(t, redelivered.Success)
	assert.Equal(t, core.StatusInactive, redelivered.Data.Status, "a revoked unlock is not revived")
	assert.False(t, svc.HasUnlock(ctx, "u1", "ai_assistant").Data)

	other := svc.ConfirmUnlock(ctx, "u1", core.UnlockForm{Feature: "ai_assistant", TransactionHash: "0xdef", AmountPaid: "0.01"})
	require.True(t, other.Success)
	assert.NotEqual(t, first.Data.ID, other.Data.ID)
	assert.True(t, svc.HasUnlock(ctx, "u1", "ai_assistant").Data)

	all := svc.ListUnlocks(ctx, "u1", store.UnlockFilter{IncludeInactive: true})
	assert.Len(t, all.Data, 2)

	bad := svc.ConfirmUnlock(ctx, "u1", core.UnlockForm{Feature: "ai_assistant", TransactionHash: "0x1", AmountPaid: "lots"})
	assert.Equal(t, core.KindValidation, bad.Kind)
}

func TestUsers(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	bad := svc.UpsertUser(ctx, core.User{FID: 0})
	assert.Equal(t, core.KindValidation, bad.Kind)

	u := svc.UpsertUser(ctx, core.User{FID: 12345, Username: "demo_user"})
	require.True(t, u.Success)
	assert.True(t, u.Data.CreatedAt.Equal(fixedNow))

	got := svc.GetUser(ctx, u.Data.ID)
	require.True(t, got.Success)
	assert.Equal(t, "demo_user", got.Data.Username)
}

type failingSubscriptions struct {
	*local.Store
}

func (failingSubscriptions) ListSubscriptions(context.Context, string, store.SubscriptionFilter) ([]core.Subscription, error) {
	return nil, errors.New("connection reset")
}

func TestSummaryBackendFailure(t *testing.T) {
	st := failingSubscriptions{local.New(local.NewMemoryBlobs())}
	svc := NewLedgerService(st)

	res := svc.Summary(context.Background(), "u1", 7, time.UTC)
	assert.False(t, res.Success)
	assert.Equal(t, core.KindBackend, res.Kind)
	assert.Contains(t, res.Error, "connection reset")
}

func ptr[T any](v T) *T { return &v }
