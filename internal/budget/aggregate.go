package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/core"
)

// MonthlyRecurringTotal sums the monthly equivalent of every active
// subscription. Subscriptions with an unknown frequency never get past the
// input boundary; if one does, it contributes nothing.
func MonthlyRecurringTotal(subs []core.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		n, err := NormalizerFor(s.Frequency)
		if err != nil {
			continue
		}
		total = total.Add(n.Monthly(s.Cost))
	}
	return total
}

// SameDayTotal sums the expenses that fall on ref's calendar day in ref's
// location. Two expenses an hour apart land in different days when they
// straddle local midnight.
func SameDayTotal(expenses []core.Expense, ref time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if sameDay(e.Timestamp, ref) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// TrailingDailyTotals returns one slot per calendar day for the last days
// days ending at ref's day, oldest first. Empty days total zero.
func TrailingDailyTotals(expenses []core.Expense, days int, ref time.Time) []core.DayTotal {
	if days <= 0 {
		return []core.DayTotal{}
	}
	loc := ref.Location()
	y, m, d := ref.Date()
	first := time.Date(y, m, d-(days-1), 0, 0, 0, 0, loc)

	out := make([]core.DayTotal, days)
	for i := range out {
		day := time.Date(y, m, d-(days-1)+i, 0, 0, 0, 0, loc)
		out[i] = core.DayTotal{
			Day:   day.Weekday().String()[:3],
			Date:  day.Format(time.DateOnly),
			Total: decimal.Zero,
		}
	}

	for _, e := range expenses {
		local := e.Timestamp.In(loc)
		ey, em, ed := local.Date()
		// Index by calendar arithmetic rather than duration so DST days
		// of 23 or 25 hours still map to one slot.
		idx := int(time.Date(ey, em, ed, 12, 0, 0, 0, time.UTC).Sub(
			time.Date(first.Year(), first.Month(), first.Day(), 12, 0, 0, 0, time.UTC)).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		out[idx].Total = out[idx].Total.Add(e.Amount)
	}
	return out
}

// CategoryBreakdown sums expense amounts per category.
func CategoryBreakdown(expenses []core.Expense) map[core.Category]decimal.Decimal {
	out := make(map[core.Category]decimal.Decimal)
	for _, e := range expenses {
		out[e.Category] = out[e.Category].Add(e.Amount)
	}
	return out
}

// SubscriptionBreakdown sums the raw cost of active subscriptions per name.
func SubscriptionBreakdown(subs []core.Subscription) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		out[s.Name] = out[s.Name].Add(s.Cost)
	}
	return out
}

// Sorted orders a breakdown for display: largest amount first, then by name.
func Sorted[K ~string](m map[K]decimal.Decimal) []core.NameAmount {
	out := make([]core.NameAmount, 0, len(m))
	for k, v := range m {
		out = append(out, core.NameAmount{Name: string(k), Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Summarize bundles the dashboard figures for ref's day.
func Summarize(subs []core.Subscription, expenses []core.Expense, ref time.Time, days int) core.Summary {
	return core.Summary{
		MonthlyRecurring: MonthlyRecurringTotal(subs),
		Today:            SameDayTotal(expenses, ref),
		Trailing:         TrailingDailyTotals(expenses, days, ref),
		ByCategory:       Sorted(CategoryBreakdown(expenses)),
		BySubscription:   Sorted(SubscriptionBreakdown(subs)),
	}
}

func sameDay(t, ref time.Time) bool {
	y1, m1, d1 := t.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
