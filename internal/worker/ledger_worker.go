package worker

import (
	"context"
	"fmt"

	"pocketledger/internal/amqp"
	"pocketledger/internal/core"
	"pocketledger/internal/log"
	"pocketledger/internal/sheets"
)

// Ledger is the part of the ledger service the worker needs
type Ledger interface {
	GetExpense(ctx context.Context, userID, id string) core.Result[core.Expense]
	ConfirmUnlock(ctx context.Context, userID string, form core.UnlockForm) core.Result[core.PremiumUnlock]
}

// LedgerWorker handles broker events: it exports new expenses to the
// spreadsheet and records payment-confirmed premium unlocks.
//
// Returning an error requeues the message, so only transient failures are
// returned. Events that can never succeed are logged and acknowledged.
type LedgerWorker struct {
	ledger Ledger
	sheet  sheets.ExpenseWriter
	logger *log.Logger
}

// NewLedgerWorker builds a worker. A nil sheet disables the export.
func NewLedgerWorker(ledger Ledger, sheet sheets.ExpenseWriter, logger *log.Logger) *LedgerWorker {
	if logger == nil {
		logger = log.Nop()
	}
	return &LedgerWorker{
		ledger: ledger,
		sheet:  sheet,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Handle dispatches an envelope by type. It satisfies amqp.Handler.
func (w *LedgerWorker) Handle(ctx context.Context, env *amqp.Envelope) error {
	switch env.Type {
	case amqp.EventExpenseCreated:
		var msg amqp.ExpenseCreated
		if err := env.Decode(&msg); err != nil {
			w.logger.WarnContext(ctx, "Dropping malformed expense event", "message_id", env.ID, log.FieldError, err)
			return nil
		}
		return w.HandleExpenseCreated(ctx, msg)

	case amqp.EventUnlockConfirmed:
		var msg amqp.UnlockConfirmed
		if err := env.Decode(&msg); err != nil {
			w.logger.WarnContext(ctx, "Dropping malformed unlock event", "message_id", env.ID, log.FieldError, err)
			return nil
		}
		return w.HandleUnlockConfirmed(ctx, msg)

	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type", "message_id", env.ID, "type", env.Type)
		return nil
	}
}

// HandleExpenseCreated appends the expense to the spreadsheet
func (w *LedgerWorker) HandleExpenseCreated(ctx context.Context, msg amqp.ExpenseCreated) error {
	fields := log.NewFields().WithOperation(log.OpAppend).WithUser(msg.UserID).WithRecord(msg.ID)

	if w.sheet == nil {
		w.logger.DebugContext(ctx, "Spreadsheet export not configured, skipping", fields.ToSlice()...)
		return nil
	}

	res := w.ledger.GetExpense(ctx, msg.UserID, msg.ID)
	if !res.Success {
		if res.Kind == core.KindBackend {
			return fmt.Errorf("get expense %s: %s", msg.ID, res.Error)
		}
		w.logger.WarnContext(ctx, "Dropping expense event", fields.With("reason", res.Error).ToSlice()...)
		return nil
	}

	ref, err := w.sheet.AppendExpense(ctx, res.Data)
	if err != nil {
		return fmt.Errorf("append expense %s: %w", msg.ID, err)
	}

	w.logger.InfoContext(ctx, "Exported expense", fields.With("row", ref).ToSlice()...)
	return nil
}

// HandleUnlockConfirmed records the unlock. The ledger ignores a transaction
// hash it has already recorded for the feature, so redeliveries are safe.
func (w *LedgerWorker) HandleUnlockConfirmed(ctx context.Context, msg amqp.UnlockConfirmed) error {
	fields := log.NewFields().WithOperation(log.OpCreate).WithUser(msg.UserID).
		With(log.FieldFeature, msg.Feature).With("transaction_hash", msg.TransactionHash)

	res := w.ledger.ConfirmUnlock(ctx, msg.UserID, core.UnlockForm{
		Feature:         msg.Feature,
		TransactionHash: msg.TransactionHash,
		AmountPaid:      msg.AmountPaid,
		Currency:        msg.Currency,
	})
	if !res.Success {
		if res.Kind == core.KindBackend {
			return fmt.Errorf("confirm unlock: %s", res.Error)
		}
		w.logger.WarnContext(ctx, "Dropping unlock event", fields.With("reason", res.Error).ToSlice()...)
		return nil
	}

	w.logger.InfoContext(ctx, "Recorded premium unlock", fields.WithRecord(res.Data.ID).ToSlice()...)
	return nil
}
