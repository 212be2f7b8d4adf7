package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter()
	rl.now = func() time.Time { return now }
	metrics := &securityMetrics{}

	for i := 0; i < rateLimitRequests; i++ {
		if !rl.allow("10.0.0.1", metrics) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1", metrics) {
		t.Error("request over the limit should be rejected")
	}
	if !rl.allow("10.0.0.2", metrics) {
		t.Error("other clients have their own budget")
	}
	if metrics.rateLimitHits != 1 {
		t.Errorf("rateLimitHits = %d, want 1", metrics.rateLimitHits)
	}

	now = now.Add(rateLimitWindow + time.Second)
	if !rl.allow("10.0.0.1", metrics) {
		t.Error("a new window should reset the budget")
	}

	now = now.Add(staleClientAfter + time.Second)
	if n := rl.cleanupStaleEntries(); n != 2 {
		t.Errorf("cleanupStaleEntries() = %d, want 2", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < rateLimitRequests; i++ {
		ts.srv.limiter.allow("192.0.2.1", ts.srv.metrics)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	rr := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Error("missing Retry-After header")
	}

	get := httptest.NewRequest(http.MethodGet, "/api/guides", nil)
	get.RemoteAddr = "192.0.2.1:4000"
	rr = httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, get)
	if rr.Code != http.StatusOK {
		t.Errorf("reads are not rate limited, got %d", rr.Code)
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		target    string
		userAgent string
		want      bool
	}{
		{"normal request", http.MethodGet, "/api/expenses", "Mozilla/5.0", false},
		{"path traversal", http.MethodGet, "/api/../../etc/passwd", "Mozilla/5.0", true},
		{"traversal in query", http.MethodGet, "/api/expenses?file=/etc/passwd", "Mozilla/5.0", true},
		{"scanner user agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "Mozilla/5.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &securityMetrics{}
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("User-Agent", tt.userAgent)
			if got := detectSuspiciousRequest(req, metrics); got != tt.want {
				t.Errorf("detectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
			if tt.want && metrics.suspiciousRequests != 1 {
				t.Errorf("suspiciousRequests = %d, want 1", metrics.suspiciousRequests)
			}
		})
	}
}
