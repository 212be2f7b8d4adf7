package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pocketledger/internal/core"
	"pocketledger/internal/store"
)

type Store struct {
	db DBTX
}

var (
	_ store.SubscriptionStore = (*Store)(nil)
	_ store.ExpenseStore      = (*Store)(nil)
	_ store.InteractionStore  = (*Store)(nil)
	_ store.UnlockStore       = (*Store)(nil)
	_ store.UserStore         = (*Store)(nil)
)

func New(db DBTX) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// nullTime maps the zero time to NULL so the column default applies.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

// Subscriptions

const subscriptionColumns = `id, user_id, name, cost, frequency, status, created_at, updated_at`

func scanSubscription(row scanner) (core.Subscription, error) {
	var s core.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Cost, &s.Frequency, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (s *Store) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if sub.Status == "" {
		sub.Status = core.StatusActive
	}
	query :=
		`INSERT INTO subscriptions (user_id, name, cost, frequency, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + subscriptionColumns

	created, err := scanSubscription(s.db.QueryRowContext(ctx, query,
		sub.UserID, sub.Name, sub.Cost, string(sub.Frequency), string(sub.Status)))
	if err != nil {
		return core.Subscription{}, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (s *Store) ListSubscriptions(ctx context.Context, userID string, f store.SubscriptionFilter) ([]core.Subscription, error) {
	query :=
		`SELECT ` + subscriptionColumns + ` FROM subscriptions
		 WHERE user_id = $1 AND ($2 OR status = 'active')
		 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, f.IncludeInactive)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]core.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (s *Store) SoftDeleteSubscription(ctx context.Context, userID, id string) (core.Subscription, error) {
	query :=
		`UPDATE subscriptions SET status = 'inactive', updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + subscriptionColumns

	sub, err := scanSubscription(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return core.Subscription{}, notFound(err)
	}
	return sub, nil
}

// Expenses

const expenseColumns = `id, user_id, amount, category, description, occurred_at, created_at`

func scanExpense(row scanner) (core.Expense, error) {
	var e core.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Description, &e.Timestamp, &e.CreatedAt)
	return e, err
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	query :=
		`INSERT INTO daily_expenses (user_id, amount, category, description, occurred_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		 RETURNING ` + expenseColumns

	created, err := scanExpense(s.db.QueryRowContext(ctx, query,
		e.UserID, e.Amount, string(e.Category), e.Description, nullTime(e.Timestamp)))
	if err != nil {
		return core.Expense{}, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (s *Store) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	query :=
		`SELECT ` + expenseColumns + ` FROM daily_expenses
		 WHERE id = $1 AND user_id = $2`

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return core.Expense{}, notFound(err)
	}
	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string, f store.ExpenseFilter) ([]core.Expense, error) {
	query :=
		`SELECT ` + expenseColumns + ` FROM daily_expenses
		 WHERE user_id = $1 AND ($2 = '' OR category = $2)
		 ORDER BY occurred_at DESC, created_at DESC
		 LIMIT $3`

	return s.queryExpenses(ctx, query, userID, string(f.Category), f.EffectiveLimit())
}

func (s *Store) ExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]core.Expense, error) {
	query :=
		`SELECT ` + expenseColumns + ` FROM daily_expenses
		 WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		 ORDER BY occurred_at DESC, created_at DESC`

	return s.queryExpenses(ctx, query, userID, start.UTC(), end.UTC())
}

func (s *Store) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Guide interactions

const interactionColumns = `id, user_id, guide_id, interaction_type, metadata, created_at`

func scanInteraction(row scanner) (core.GuideInteraction, error) {
	var (
		g   core.GuideInteraction
		raw []byte
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.GuideID, &g.InteractionType, &raw, &g.CreatedAt); err != nil {
		return g, err
	}
	g.Metadata = map[string]string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &g.Metadata); err != nil {
			return g, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return g, nil
}

func (s *Store) CreateInteraction(ctx context.Context, g core.GuideInteraction) (core.GuideInteraction, error) {
	if g.Metadata == nil {
		g.Metadata = map[string]string{}
	}
	meta, err := json.Marshal(g.Metadata)
	if err != nil {
		return core.GuideInteraction{}, fmt.Errorf("encode metadata: %w", err)
	}

	query :=
		`INSERT INTO user_interactions (user_id, guide_id, interaction_type, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING ` + interactionColumns

	created, err := scanInteraction(s.db.QueryRowContext(ctx, query,
		g.UserID, g.GuideID, g.InteractionType, string(meta)))
	if err != nil {
		return core.GuideInteraction{}, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (s *Store) ListInteractions(ctx context.Context, userID string, f store.InteractionFilter) ([]core.GuideInteraction, error) {
	query :=
		`SELECT ` + interactionColumns + ` FROM user_interactions
		 WHERE user_id = $1 AND ($2 = '' OR guide_id = $2) AND ($3 = '' OR interaction_type = $3)
		 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, f.GuideID, f.Type)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]core.GuideInteraction, 0)
	for rows.Next() {
		g, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Premium unlocks

const unlockColumns = `id, user_id, feature, transaction_hash, amount_paid, currency, status, unlocked_at`

func scanUnlock(row scanner) (core.PremiumUnlock, error) {
	var u core.PremiumUnlock
	err := row.Scan(&u.ID, &u.UserID, &u.Feature, &u.TransactionHash, &u.AmountPaid, &u.Currency, &u.Status, &u.UnlockedAt)
	return u, err
}

func (s *Store) CreateUnlock(ctx context.Context, u core.PremiumUnlock) (core.PremiumUnlock, error) {
	if u.Status == "" {
		u.Status = core.StatusActive
	}
	if u.Currency == "" {
		u.Currency = core.DefaultUnlockCurrency
	}
	query :=
		`INSERT INTO premium_unlocks (user_id, feature, transaction_hash, amount_paid, currency, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + unlockColumns

	created, err := scanUnlock(s.db.QueryRowContext(ctx, query,
		u.UserID, u.Feature, u.TransactionHash, u.AmountPaid, u.Currency, string(u.Status)))
	if err != nil {
		return core.PremiumUnlock{}, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (s *Store) ListUnlocks(ctx context.Context, userID string, f store.UnlockFilter) ([]core.PremiumUnlock, error) {
	query :=
		`SELECT ` + unlockColumns + ` FROM premium_unlocks
		 WHERE user_id = $1 AND ($2 = '' OR feature = $2) AND ($3 OR status = 'active')
		 ORDER BY unlocked_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, f.Feature, f.IncludeInactive)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]core.PremiumUnlock, 0)
	for rows.Next() {
		u, err := scanUnlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (s *Store) RevokeUnlock(ctx context.Context, userID, id string) (core.PremiumUnlock, error) {
	query :=
		`UPDATE premium_unlocks SET status = 'inactive'
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + unlockColumns

	u, err := scanUnlock(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return core.PremiumUnlock{}, notFound(err)
	}
	return u, nil
}

// Users

const userColumns = `id, fid, username, display_name, pfp_url, bio, follower_count, following_count, wallet_address, currency, created_at`

func scanUser(row scanner) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.FID, &u.Username, &u.DisplayName, &u.PfpURL, &u.Bio,
		&u.FollowerCount, &u.FollowingCount, &u.WalletAddress, &u.Currency, &u.CreatedAt)
	return u, err
}

func (s *Store) UpsertUser(ctx context.Context, u core.User) (core.User, error) {
	if u.Currency == "" {
		u.Currency = "USD"
	}
	query :=
		`INSERT INTO users (fid, username, display_name, pfp_url, bio, follower_count, following_count, wallet_address, currency)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (fid) DO UPDATE SET
		   username = EXCLUDED.username,
		   display_name = EXCLUDED.display_name,
		   pfp_url = EXCLUDED.pfp_url,
		   bio = EXCLUDED.bio,
		   follower_count = EXCLUDED.follower_count,
		   following_count = EXCLUDED.following_count,
		   wallet_address = EXCLUDED.wallet_address,
		   currency = EXCLUDED.currency
		 RETURNING ` + userColumns

	saved, err := scanUser(s.db.QueryRowContext(ctx, query,
		u.FID, u.Username, u.DisplayName, u.PfpURL, u.Bio,
		u.FollowerCount, u.FollowingCount, u.WalletAddress, u.Currency))
	if err != nil {
		return core.User{}, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return core.User{}, notFound(err)
	}
	return u, nil
}
