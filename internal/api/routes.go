package api

import (
	"net/http"

	"grocerynana/internal/models"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// RouteOption configures optional route behavior.
type RouteOption func(*mux.Router)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
// Health probes are not traced.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/api/health"
			}),
		))
	}
}

// WithRateLimiter throttles matched routes with the given middleware.
func WithRateLimiter(middleware func(http.Handler) http.Handler) RouteOption {
	return func(r *mux.Router) {
		r.Use(middleware)
	}
}

// NewRouter registers the API routes. Method mismatches on a known path get a
// 405 JSON error; unknown paths fall through to mux's 404.
func NewRouter(handlers *Handlers, opts ...RouteOption) *mux.Router {
	router := mux.NewRouter()

	for _, opt := range opts {
		opt(router)
	}

	router.HandleFunc("/", handlers.Hello).Methods(http.MethodGet)
	router.HandleFunc("/api/health", handlers.HealthCheck).Methods(http.MethodGet)

	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return router
}

// SetupRoutes builds the complete request pipeline. Outermost first: access
// log, CORS, panic recovery, router. The middleware wraps the router rather
// than being registered with router.Use so it also runs for preflights and
// unmatched routes. CORS answers preflights itself, so the access log has to
// sit outside it.
func SetupRoutes(handlers *Handlers, config *models.Config, opts ...RouteOption) http.Handler {
	router := NewRouter(handlers, opts...)

	var handler http.Handler = router
	handler = recoveryMiddleware(handler)
	handler = corsMiddleware(config.Server.CORS)(handler)
	handler = loggingMiddleware(handler)

	return handler
}
