// Package sheets defines the spreadsheet export port.
package sheets

import (
	"context"
	"time"

	"pocketledger/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseWriter appends one expense row and returns a reference to it.
	ExpenseWriter interface {
		AppendExpense(ctx context.Context, e core.Expense) (rowRef string, err error)
	}
)

// Header is the column order written by every ExpenseWriter.
var Header = []string{"date", "category", "description", "amount", "user_id", "id"}

// Row renders an expense in Header order. The date is the occurrence time in
// UTC so rows from different clients sort consistently.
func Row(e core.Expense) []string {
	return []string{
		e.Timestamp.UTC().Format(time.DateTime),
		string(e.Category),
		e.Description,
		core.FormatAmount(e.Amount),
		e.UserID,
		e.ID,
	}
}
