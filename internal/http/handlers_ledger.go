package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/amqp"
	"pocketledger/internal/auth"
	"pocketledger/internal/core"
	"pocketledger/internal/log"
	"pocketledger/internal/store"
)

// Subscriptions

func (s *Server) handleListSubscriptions(c *gin.Context) {
	includeInactive, err := queryBool(c, "include_inactive")
	if err != nil {
		writeError(c, err)
		return
	}
	res := s.ledger.ListSubscriptions(c.Request.Context(), auth.UserID(c), includeInactive)
	writeResult(c, http.StatusOK, res, viewAll(viewSubscription))
}

func (s *Server) handleCreateSubscription(c *gin.Context) {
	var form core.SubscriptionForm
	if err := bindJSON(c, &form); err != nil {
		writeError(c, err)
		return
	}
	res := s.ledger.CreateSubscription(c.Request.Context(), auth.UserID(c), form)
	writeResult(c, http.StatusCreated, res, viewSubscription)
}

func (s *Server) handleDeleteSubscription(c *gin.Context) {
	res := s.ledger.DeleteSubscription(c.Request.Context(), auth.UserID(c), c.Param("id"))
	writeResult(c, http.StatusOK, res, viewSubscription)
}

// Expenses

func (s *Server) handleListExpenses(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		writeError(c, err)
		return
	}
	f := store.ExpenseFilter{
		Category: core.Category(strings.TrimSpace(c.Query("category"))),
		Limit:    limit,
	}
	res := s.ledger.ListExpenses(c.Request.Context(), auth.UserID(c), f)
	writeResult(c, http.StatusOK, res, viewAll(viewExpense))
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	var form core.ExpenseForm
	if err := bindJSON(c, &form); err != nil {
		writeError(c, err)
		return
	}
	res := s.ledger.CreateExpense(c.Request.Context(), auth.UserID(c), form)
	writeResult(c, http.StatusCreated, res, viewExpense)
}

func (s *Server) handleGetExpense(c *gin.Context) {
	res := s.ledger.GetExpense(c.Request.Context(), auth.UserID(c), c.Param("id"))
	writeResult(c, http.StatusOK, res, viewExpense)
}

func (s *Server) handleExpensesInRange(c *gin.Context) {
	start, err := queryTime(c, "start")
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := queryTime(c, "end")
	if err != nil {
		writeError(c, err)
		return
	}
	res := s.ledger.ExpensesInRange(c.Request.Context(), auth.UserID(c), start, end)
	writeResult(c, http.StatusOK, res, viewAll(viewExpense))
}

func (s *Server) handleSummary(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		writeError(c, err)
		return
	}
	loc, err := queryLocation(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res := s.ledger.Summary(c.Request.Context(), auth.UserID(c), days, loc)
	writeResult(c, http.StatusOK, res, viewSummary)
}

// Premium unlocks

func (s *Server) handleListUnlocks(c *gin.Context) {
	includeInactive, err := queryBool(c, "include_inactive")
	if err != nil {
		writeError(c, err)
		return
	}
	f := store.UnlockFilter{Feature: strings.TrimSpace(c.Query("feature")), IncludeInactive: includeInactive}
	res := s.ledger.ListUnlocks(c.Request.Context(), auth.UserID(c), f)
	writeResult(c, http.StatusOK, res, viewAll(viewUnlock))
}

func (s *Server) handleRevokeUnlock(c *gin.Context) {
	res := s.ledger.RevokeUnlock(c.Request.Context(), auth.UserID(c), c.Param("id"))
	writeResult(c, http.StatusOK, res, viewUnlock)
}

type unlockStatusView struct {
	Feature  string `json:"feature"`
	Unlocked bool   `json:"unlocked"`
}

func (s *Server) handleHasUnlock(c *gin.Context) {
	feature := c.Param("feature")
	res := s.ledger.HasUnlock(c.Request.Context(), auth.UserID(c), feature)
	writeResult(c, http.StatusOK, res, func(ok bool) unlockStatusView {
		return unlockStatusView{Feature: feature, Unlocked: ok}
	})
}

type pendingUnlockView struct {
	Status          string `json:"status"`
	Feature         string `json:"feature"`
	TransactionHash string `json:"transaction_hash"`
}

// handleConfirmUnlock accepts a settled payment. With a broker the
// confirmation is queued for the worker and answered with 202; otherwise the
// unlock is recorded here. Both paths ignore a repeated transaction hash.
func (s *Server) handleConfirmUnlock(c *gin.Context) {
	ctx := c.Request.Context()
	userID := auth.UserID(c)

	var form core.UnlockForm
	if err := bindJSON(c, &form); err != nil {
		writeError(c, err)
		return
	}
	if s.payments == nil {
		writeResult(c, http.StatusCreated, s.ledger.ConfirmUnlock(ctx, userID, form), viewUnlock)
		return
	}

	parsed, err := form.Parse(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	msg := amqp.UnlockConfirmed{
		UserID:          userID,
		Feature:         parsed.Feature,
		TransactionHash: parsed.TransactionHash,
		AmountPaid:      parsed.AmountPaid.String(),
		Currency:        parsed.Currency,
	}
	if err := s.payments.PublishUnlockConfirmed(ctx, msg); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to queue payment confirmation",
			log.NewFields().WithOperation(log.OpPublish).WithUser(userID).With(log.FieldFeature, parsed.Feature).WithError(err).ToSlice()...)
		writeFailure(c, core.KindBackend, "payment confirmation could not be queued, please retry")
		return
	}
	writeOK(c, http.StatusAccepted, pendingUnlockView{
		Status:          "pending",
		Feature:         parsed.Feature,
		TransactionHash: parsed.TransactionHash,
	})
}
