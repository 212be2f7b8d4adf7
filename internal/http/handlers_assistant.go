package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/assistant"
	"pocketledger/internal/auth"
	"pocketledger/internal/core"
	"pocketledger/internal/store"
)

type simplifyRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

type guidanceRequest struct {
	Situation string `json:"situation"`
	Category  string `json:"category"`
}

type assistantView struct {
	Text string `json:"text"`
}

// writeAssistant renders a model answer. An unconfigured model degrades to
// the canned text for kind, flagged as demo output.
func writeAssistant(c *gin.Context, kind assistant.Kind, res core.Result[string]) {
	if !res.Success && res.Kind == core.KindUnconfigured {
		c.JSON(http.StatusOK, response{Success: true, Data: assistantView{Text: assistant.Canned(kind)}, Demo: true})
		return
	}
	writeResult(c, http.StatusOK, res, func(text string) assistantView { return assistantView{Text: text} })
}

func (s *Server) handleSimplify(c *gin.Context) {
	var req simplifyRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	writeAssistant(c, assistant.KindSimplify, s.assistant.Simplify(c.Request.Context(), req.Text, req.Context))
}

func (s *Server) handleGuidance(c *gin.Context) {
	var req guidanceRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	writeAssistant(c, assistant.KindGuidance, s.assistant.Guidance(c.Request.Context(), req.Situation, req.Category))
}

// handleBudget analyses the user's latest expenses and active subscriptions.
func (s *Server) handleBudget(c *gin.Context) {
	ctx := c.Request.Context()
	userID := auth.UserID(c)

	if !s.assistant.Available() {
		writeAssistant(c, assistant.KindBudget, core.Fail[string](core.ErrUnconfigured))
		return
	}

	expenses := s.ledger.ListExpenses(ctx, userID, store.ExpenseFilter{Limit: assistant.BudgetWindow})
	if !expenses.Success {
		writeFailure(c, expenses.Kind, expenses.Error)
		return
	}
	subs := s.ledger.ListSubscriptions(ctx, userID, false)
	if !subs.Success {
		writeFailure(c, subs.Kind, subs.Error)
		return
	}

	writeAssistant(c, assistant.KindBudget, s.assistant.AnalyzeBudget(ctx, expenses.Data, subs.Data))
}
