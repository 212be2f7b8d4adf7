// Package assistant produces plain-language legal and budget text through a
// chat-completion model.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"

	"pocketledger/internal/budget"
	"pocketledger/internal/core"
	"pocketledger/internal/log"
)

// Kind names one of the assistant's tasks.
type Kind string

const (
	KindSimplify Kind = "simplify"
	KindGuidance Kind = "guidance"
	KindBudget   Kind = "budget"
)

// BudgetWindow is how many of the most recent expenses are sent for analysis.
const BudgetWindow = 30

var ErrEmptyPrompt = fmt.Errorf("%w: empty prompt", core.ErrValidation)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

type Service struct {
	client *openai.Client
	model  string
	logger *log.Logger
}

// New builds the service. Without an API key every call fails with
// core.ErrUnconfigured and callers fall back to Canned.
func New(cfg Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Service{
		model:  cfg.Model,
		logger: logger.WithComponent(log.ComponentAssistant),
	}
	if s.model == "" {
		s.model = openai.GPT3Dot5Turbo
	}
	if cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		s.client = openai.NewClientWithConfig(oc)
	}
	return s
}

func (s *Service) Available() bool { return s.client != nil }

// Simplify rewrites legal text for a general audience.
func (s *Service) Simplify(ctx context.Context, text, userContext string) core.Result[string] {
	text = strings.TrimSpace(text)
	if text == "" {
		return core.Fail[string](ErrEmptyPrompt)
	}

	var b strings.Builder
	b.WriteString("Please simplify the following legal information for a general audience.\n")
	b.WriteString("Make it easy to understand while keeping all important details.\n")
	if c := strings.TrimSpace(userContext); c != "" {
		fmt.Fprintf(&b, "Context: %s\n", c)
	}
	fmt.Fprintf(&b, "\nLegal text to simplify:\n%s\n\n", text)
	b.WriteString("Please provide:\n1. A simple summary\n2. Key points in plain English\n3. What this means for the average person\n")

	return s.complete(ctx, KindSimplify, prompt{
		system: "You are a helpful legal assistant that explains complex legal concepts in simple, accessible language. " +
			"Always emphasize that this is educational information and not legal advice.",
		user:        b.String(),
		maxTokens:   500,
		temperature: 0.3,
	})
}

// Guidance suggests next steps for a described situation.
func (s *Service) Guidance(ctx context.Context, situation, category string) core.Result[string] {
	situation = strings.TrimSpace(situation)
	if situation == "" {
		return core.Fail[string](ErrEmptyPrompt)
	}
	if category = strings.TrimSpace(category); category == "" {
		category = "general"
	}

	user := fmt.Sprintf("A user is asking for guidance about: %s\nCategory: %s\n\n", situation, category) +
		"Please provide:\n1. Immediate steps they should take\n2. Their key rights in this situation\n" +
		"3. What to avoid doing\n4. When to seek professional legal help\n\n" +
		"Keep the advice practical, actionable, and emphasize this is educational information only.\n"

	return s.complete(ctx, KindGuidance, prompt{
		system: "You are a knowledgeable legal education assistant. Provide helpful, accurate information while always " +
			"emphasizing that users should consult with qualified attorneys for specific legal advice. " +
			"Focus on general rights and procedures.",
		user:        user,
		maxTokens:   600,
		temperature: 0.4,
	})
}

type budgetInput struct {
	DailyExpenses             []core.Expense      `json:"daily_expenses"`
	Subscriptions             []core.Subscription `json:"subscriptions"`
	TotalMonthlySubscriptions decimal.Decimal     `json:"total_monthly_subscriptions"`
}

// AnalyzeBudget asks for saving suggestions over the user's recent spending.
func (s *Service) AnalyzeBudget(ctx context.Context, expenses []core.Expense, subs []core.Subscription) core.Result[string] {
	data, err := json.MarshalIndent(budgetInput{
		DailyExpenses:             recent(expenses, BudgetWindow),
		Subscriptions:             subs,
		TotalMonthlySubscriptions: budget.MonthlyRecurringTotal(subs),
	}, "", "  ")
	if err != nil {
		return core.Fail[string](fmt.Errorf("encode budget data: %w", err))
	}

	user := fmt.Sprintf("Analyze this user's spending data and provide insights:\n%s\n\n", data) +
		"Please provide:\n1. Spending patterns and trends\n2. Areas where they could save money\n" +
		"3. Budget recommendations\n4. Subscription optimization suggestions\n\n" +
		"Keep advice practical and actionable.\n"

	return s.complete(ctx, KindBudget, prompt{
		system: "You are a helpful financial advisor assistant. Analyze spending data and provide practical, actionable " +
			"budget advice. Be encouraging and focus on realistic improvements.",
		user:        user,
		maxTokens:   500,
		temperature: 0.3,
	})
}

// recent returns the n latest expenses by occurrence time, oldest first.
func recent(expenses []core.Expense, n int) []core.Expense {
	out := make([]core.Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

type prompt struct {
	system      string
	user        string
	maxTokens   int
	temperature float32
}

func (s *Service) complete(ctx context.Context, kind Kind, p prompt) core.Result[string] {
	if s.client == nil {
		return core.Fail[string](fmt.Errorf("language model: %w", core.ErrUnconfigured))
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.system},
			{Role: openai.ChatMessageRoleUser, Content: p.user},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Chat completion failed", "kind", kind, log.FieldError, err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 401 {
			return core.Fail[string](fmt.Errorf("language model: %s: %w", apiErr.Message, core.ErrUnauthorized))
		}
		return core.Fail[string](fmt.Errorf("language model: %w", err))
	}
	if len(resp.Choices) == 0 {
		return core.Fail[string](errors.New("language model: empty response"))
	}

	s.logger.DebugContext(ctx, "Chat completion finished", "kind", kind, "total_tokens", resp.Usage.TotalTokens)
	return core.OK(strings.TrimSpace(resp.Choices[0].Message.Content))
}

var canned = map[Kind]string{
	KindSimplify: "This legal concept means you have the right to remain silent and ask for a lawyer. In simple terms: " +
		"don't say anything that might hurt your case, and always ask for legal help if you're in trouble.",
	KindGuidance: "Based on your situation, here are the key steps: 1) Document everything, 2) Know your rights, " +
		"3) Seek professional help if needed. Remember, this is educational information only.",
	KindBudget: "Your spending shows you could save about $50/month by reviewing your subscriptions. Consider canceling " +
		"services you don't use regularly and look for better deals on essentials.",
}

// Canned returns the static text served when no model is configured.
func Canned(kind Kind) string {
	if text, ok := canned[kind]; ok {
		return text
	}
	return "AI analysis would appear here in production."
}
