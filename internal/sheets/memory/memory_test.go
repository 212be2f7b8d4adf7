package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/core"
)

func TestWriterAppend(t *testing.T) {
	w := New()
	ctx := context.Background()
	e := core.Expense{
		ID:          "e1",
		UserID:      "u1",
		Amount:      decimal.RequireFromString("12.5"),
		Category:    core.Food,
		Description: "lunch",
		Timestamp:   time.Date(2025, 6, 15, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
	}

	ref, err := w.AppendExpense(ctx, e)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	again, err := w.AppendExpense(ctx, e)
	if err != nil || again != ref {
		t.Fatalf("duplicate append: ref=%q err=%v", again, err)
	}

	rows := w.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := []string{"2025-06-15 10:30:00", "food", "lunch", "12.50", "u1", "e1"}
	for i := range want {
		if rows[0][i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, rows[0][i], want[i])
		}
	}

	if _, err := w.AppendExpense(ctx, core.Expense{ID: "bad", Category: "nope"}); err == nil {
		t.Error("expected validation error for unknown category")
	}
}
