// Package budget derives spending summaries from in-memory record
// collections. Every function is pure: no I/O, no hidden state, safe to call
// concurrently on a snapshot.
package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pocketledger/internal/core"
)

// MonthlyNormalizer is the strategy that converts one billing period's cost
// into its monthly equivalent.
type MonthlyNormalizer interface {
	Monthly(cost decimal.Decimal) decimal.Decimal
}

// MonthlyBilling passes the cost through unchanged.
type MonthlyBilling struct{}

func (MonthlyBilling) Monthly(cost decimal.Decimal) decimal.Decimal { return cost }

// YearlyBilling spreads the cost over twelve months.
type YearlyBilling struct{}

var twelve = decimal.NewFromInt(12)

func (YearlyBilling) Monthly(cost decimal.Decimal) decimal.Decimal { return cost.Div(twelve) }

var normalizers = map[core.Frequency]MonthlyNormalizer{
	core.Monthly: MonthlyBilling{},
	core.Yearly:  YearlyBilling{},
}

// NormalizerFor returns the strategy for a billing frequency.
func NormalizerFor(f core.Frequency) (MonthlyNormalizer, error) {
	n, ok := normalizers[f]
	if !ok {
		return nil, fmt.Errorf("unknown billing frequency: %s", f)
	}
	return n, nil
}
