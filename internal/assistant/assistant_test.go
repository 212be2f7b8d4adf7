package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketledger/internal/core"
)

// fakeModel records the last request and answers with a fixed completion.
func fakeModel(t *testing.T, status int) (*httptest.Server, *openai.ChatCompletionRequest) {
	t.Helper()
	var last openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&last); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
			return
		}
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  plain words  "},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestSimplifyAndGuidance(t *testing.T) {
	srv, last := fakeModel(t, http.StatusOK)
	svc := New(Config{APIKey: "key", BaseURL: srv.URL + "/v1"}, nil)
	ctx := context.Background()
	require.True(t, svc.Available())

	res := svc.Simplify(ctx, "The tenant shall remit payment.", "renting")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "plain words", res.Data)
	assert.Equal(t, openai.GPT3Dot5Turbo, last.Model)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, last.Messages[0].Role)
	assert.Contains(t, last.Messages[1].Content, "Context: renting")
	assert.Contains(t, last.Messages[1].Content, "The tenant shall remit payment.")
	assert.Equal(t, 500, last.MaxTokens)

	res = svc.Guidance(ctx, "my landlord kept my deposit", "")
	require.True(t, res.Success, res.Error)
	assert.Contains(t, last.Messages[1].Content, "Category: general")
	assert.Equal(t, 600, last.MaxTokens)

	empty := svc.Simplify(ctx, "   ", "")
	assert.Equal(t, core.KindValidation, empty.Kind)
}

func TestAnalyzeBudget(t *testing.T) {
	srv, last := fakeModel(t, http.StatusOK)
	svc := New(Config{APIKey: "key", BaseURL: srv.URL + "/v1", Model: "gpt-4o-mini"}, nil)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var expenses []core.Expense
	for i := 0; i < BudgetWindow+5; i++ {
		expenses = append(expenses, core.Expense{
			ID:        fmt.Sprintf("e%02d", i),
			Amount:    decimal.NewFromInt(int64(i)),
			Category:  core.Food,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
	}
	subs := []core.Subscription{
		{Name: "Netflix", Cost: decimal.RequireFromString("15.99"), Frequency: core.Monthly, Status: core.StatusActive},
		{Name: "Amazon Prime", Cost: decimal.NewFromInt(139), Frequency: core.Yearly, Status: core.StatusActive},
	}

	res := svc.AnalyzeBudget(context.Background(), expenses, subs)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "gpt-4o-mini", last.Model)

	content := last.Messages[1].Content
	assert.NotContains(t, content, `"e04"`, "only the latest expenses are sent")
	assert.Contains(t, content, `"e05"`)
	assert.Contains(t, content, `"e34"`)
	assert.Contains(t, content, "27.5733")
}

func TestUnconfigured(t *testing.T) {
	svc := New(Config{}, nil)
	assert.False(t, svc.Available())

	res := svc.Guidance(context.Background(), "stopped by police", "police_stop")
	assert.False(t, res.Success)
	assert.Equal(t, core.KindUnconfigured, res.Kind)
}

func TestUpstreamErrors(t *testing.T) {
	srv, _ := fakeModel(t, http.StatusUnauthorized)
	svc := New(Config{APIKey: "wrong", BaseURL: srv.URL + "/v1"}, nil)

	res := svc.Simplify(context.Background(), "text", "")
	assert.False(t, res.Success)
	assert.Equal(t, core.KindUnauthorized, res.Kind)

	srv, _ = fakeModel(t, http.StatusInternalServerError)
	svc = New(Config{APIKey: "key", BaseURL: srv.URL + "/v1"}, nil)
	res = svc.Simplify(context.Background(), "text", "")
	assert.Equal(t, core.KindBackend, res.Kind)
}

func TestCanned(t *testing.T) {
	for _, k := range []Kind{KindSimplify, KindGuidance, KindBudget} {
		assert.NotEmpty(t, Canned(k))
	}
	assert.Equal(t, "AI analysis would appear here in production.", Canned("other"))
	assert.Contains(t, Canned(KindBudget), "$50/month")
}
