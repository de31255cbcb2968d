package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"grocerynana/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func doRequest(handler http.Handler, path, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_AllowedRequest(t *testing.T) {
	limiter := newTestLimiter(t, 60, 10, 5*time.Minute)
	handler := Middleware(limiter, false)(http.HandlerFunc(okHandler))

	rr := doRequest(handler, "/", "192.168.1.1:12345", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", rr.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))
	assert.Empty(t, rr.Header().Get("Retry-After"))
}

func TestMiddleware_DeniedRequest(t *testing.T) {
	limiter := newTestLimiter(t, 60, 2, 5*time.Minute)
	handler := Middleware(limiter, false)(http.HandlerFunc(okHandler))

	for range 2 {
		rr := doRequest(handler, "/", "192.168.1.1:12345", nil)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	// A new source port is the same client.
	rr := doRequest(handler, "/", "192.168.1.1:54321", nil)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	retryAfter, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, ErrorCodeRateLimited, resp.Code)
	assert.Equal(t, "Rate limit exceeded", resp.Message)
}

func TestMiddleware_ExemptPaths(t *testing.T) {
	limiter := newTestLimiter(t, 60, 1, 5*time.Minute)
	handler := Middleware(limiter, false, "/api/health")(http.HandlerFunc(okHandler))

	for range 5 {
		rr := doRequest(handler, "/api/health", "192.168.1.1:1", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	}

	assert.Equal(t, http.StatusOK, doRequest(handler, "/", "192.168.1.1:1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "/", "192.168.1.1:1", nil).Code)
}

func TestMiddleware_ForwardedHeadersIgnoredWithoutTrust(t *testing.T) {
	limiter := newTestLimiter(t, 60, 1, 5*time.Minute)
	handler := Middleware(limiter, false)(http.HandlerFunc(okHandler))

	first := doRequest(handler, "/", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "1.1.1.1"})
	second := doRequest(handler, "/", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "2.2.2.2"})

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		expected   string
	}{
		{"remote addr with port", "192.168.1.1:12345", nil, false, "192.168.1.1"},
		{"ipv6 remote addr", "[::1]:8080", nil, false, "::1"},
		{"remote addr without port", "192.168.1.1", nil, false, "192.168.1.1"},
		{"forwarded for untrusted", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7"}, false, "10.0.0.1"},
		{"forwarded for trusted", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, true, "203.0.113.7"},
		{"real ip trusted", "10.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.9"}, true, "203.0.113.9"},
		{"forwarded for wins over real ip", "10.0.0.1:1",
			map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "203.0.113.9"}, true, "203.0.113.7"},
		{"empty forwarded entry falls back", "10.0.0.1:1", map[string]string{"X-Forwarded-For": " , 10.0.0.2"}, true, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIP(req, tt.trustProxy))
		})
	}
}
