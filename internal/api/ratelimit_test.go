package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware_LimitsPosts(t *testing.T) {
	ts := setupTestServer(t, Options{PostRate: 0.001, PostBurst: 2})
	const client = "X-Forwarded-For: 203.0.113.9"

	for range 2 {
		resp := ts.api.Post("/api/v1/recommendations", client, map[string]any{"title": "A"})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Post("/api/v1/recommendations", client, map[string]any{"title": "A"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// The form submit from the same client shares the budget.
	form := url.Values{"title": {"A"}}
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Another client still has its own budget.
	assert.Equal(t, http.StatusOK, ts.api.Post("/api/v1/recommendations", "X-Forwarded-For: 203.0.113.10", map[string]any{"title": "A"}).Code)
}

func TestRateLimitMiddleware_ReadsPassThrough(t *testing.T) {
	ts := setupTestServer(t, Options{PostRate: 0.001, PostBurst: 1})

	for range 5 {
		assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/movies").Code)
	}
}

func TestRateLimitMiddleware_PerClient(t *testing.T) {
	ts := setupTestServer(t, Options{PostRate: 0.001, PostBurst: 1})

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/recommend", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		ts.server.ServeHTTP(w, req)
		return w.Code
	}

	assert.NotEqual(t, http.StatusTooManyRequests, post("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("203.0.113.1"))
	assert.NotEqual(t, http.StatusTooManyRequests, post("203.0.113.2"))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"remote addr", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"remote addr without port", nil, "192.0.2.10", "192.0.2.10"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"forwarded for chain", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"}, "10.0.0.2:80", "198.51.100.7"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.8 "}, "10.0.0.2:80", "198.51.100.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
