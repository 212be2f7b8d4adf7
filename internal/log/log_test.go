package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Component: ComponentLedger})

	l.Info("expense saved", FieldUserID, "u1")
	l.WithComponent(ComponentAMQP).Warn("publish failed")

	out := buf.String()
	assert.Contains(t, out, "component=ledger")
	assert.Contains(t, out, "user_id=u1")
	assert.Contains(t, out, "component=amqp")
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithUser("u1").WithError(errors.New("boom")).WithError(nil).WithComponent(ComponentHTTP)
	assert.Equal(t, "u1", f[FieldUserID])
	assert.Equal(t, "boom", f[FieldError])

	slice := f.ToSlice()
	assert.Len(t, slice, 4)
	assert.NotContains(t, slice, FieldComponent)
}

func TestFromContextFallback(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())

	mine := Nop()
	assert.Same(t, mine, FromContext(NewContext(context.Background(), mine)))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	r := gin.New()
	r.Use(GinMiddleware(logger))
	r.GET("/ping", func(c *gin.Context) {
		assert.Equal(t, ComponentHTTP, FromContext(c.Request.Context()).Component())
		c.String(http.StatusTeapot, "pong")
	})

	t.Run("generates request id", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		out := buf.String()
		assert.Contains(t, out, "level=WARN")
		assert.Contains(t, out, "request_id="+id)
		assert.Contains(t, out, "status_code=418")
	})

	t.Run("keeps caller request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.True(t, strings.Contains(buf.String(), "request_id=abc-123"))
	})
}
