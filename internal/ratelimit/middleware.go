package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"grocerynana/internal/models"
)

// ErrorCodeRateLimited is the error code of a 429 response body.
const ErrorCodeRateLimited = "RATE_LIMIT_EXCEEDED"

// Middleware rejects requests over the limit with 429 and a JSON error body.
// Requests for the exempt paths bypass the limiter entirely.
func Middleware(limiter Limiter, trustProxy bool, exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key := ClientIP(r, trustProxy)
			allowed, info := limiter.Allow(key)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int(info.RetryAfter.Seconds()) + 1
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			h.Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)

			body, _ := json.Marshal(models.NewErrorResponse("Rate limit exceeded", ErrorCodeRateLimited))
			w.Write(body)

			slog.Warn("Rate limit exceeded",
				"client", key,
				"path", r.URL.Path,
				"retry_after", retryAfter)
		})
	}
}

// ClientIP returns the address requests are throttled by. X-Forwarded-For and
// X-Real-IP are consulted only when trustProxy is set, since clients can
// forge them.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
