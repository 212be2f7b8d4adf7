package memory

import (
	"context"
	"fmt"
	"sync"

	"pocketledger/internal/core"
	"pocketledger/internal/sheets"
)

// Writer keeps exported rows in memory. Expense ids already written are
// skipped so redelivered events do not duplicate rows.
type Writer struct {
	mu   sync.Mutex
	rows [][]string
	refs map[string]string
}

var _ sheets.ExpenseWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{refs: make(map[string]string)}
}

// AppendExpense stores the row and returns a synthetic row reference.
func (w *Writer) AppendExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if ref, ok := w.refs[e.ID]; ok {
		return ref, nil
	}
	w.rows = append(w.rows, sheets.Row(e))
	ref := fmt.Sprintf("mem:%d", len(w.rows))
	w.refs[e.ID] = ref
	return ref, nil
}

// Rows returns a copy of everything written so far.
func (w *Writer) Rows() [][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]string, len(w.rows))
	for i, r := range w.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
