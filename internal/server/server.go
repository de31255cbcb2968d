// Package server assembles the GroceryNana backend: observability, database
// pool, schema migrations and the HTTP pipeline. Every step of New must
// succeed before a listener is bound.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"

	"grocerynana/internal/api"
	"grocerynana/internal/models"
	"grocerynana/internal/observability"
	"grocerynana/internal/ratelimit"
	"grocerynana/internal/storage"
	"grocerynana/internal/version"
	"grocerynana/migrations"
)

// Server owns the resources created at startup and releases them in Close.
type Server struct {
	cfg        *models.Config
	migrations fs.FS

	provider *observability.Provider
	store    storage.Storage
	limiter  *ratelimit.MemoryLimiter
	applied  []storage.AppliedMigration

	httpServer    *http.Server
	metricsServer *observability.MetricsServer
}

// Option customises New.
type Option func(*Server)

// WithMigrations replaces the embedded migration set.
func WithMigrations(fsys fs.FS) Option {
	return func(s *Server) {
		s.migrations = fsys
	}
}

// New creates the pool, applies pending migrations and builds the request
// pipeline. On error everything created so far is released.
func New(ctx context.Context, cfg *models.Config, ver version.Info, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, migrations: migrations.FS}
	for _, opt := range opts {
		opt(s)
	}

	provider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	s.provider = provider

	if err := s.init(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) init(ctx context.Context) error {
	pool, err := storage.Open(ctx, s.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}
	s.store = pool
	slog.Info("Database pool created", "driver", pool.Driver())

	if s.provider.Registry() != nil || s.provider.TracingEnabled() {
		instrumented, err := observability.NewInstrumentedStorage(pool)
		if err != nil {
			return fmt.Errorf("failed to create instrumented storage: %w", err)
		}
		s.store = instrumented
	}

	applied, err := s.store.Migrate(ctx, s.migrations)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	s.applied = applied
	slog.Info("Migrations complete", "applied", len(applied))

	var routeOpts []api.RouteOption
	if s.provider.TracingEnabled() {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(s.cfg.Observability.ServiceName))
	}
	if rl := s.cfg.Server.RateLimit; rl.Enabled {
		s.limiter = ratelimit.NewMemoryLimiter(rl)
		routeOpts = append(routeOpts,
			api.WithRateLimiter(ratelimit.Middleware(s.limiter, rl.TrustProxy, "/api/health")))
	}

	handlers := api.NewHandlers(api.WithStorage(s.store))

	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      api.SetupRoutes(handlers, s.cfg, routeOpts...),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	if s.cfg.Metrics.Enabled {
		s.metricsServer = observability.NewMetricsServer(s.cfg.Metrics.Port, s.cfg.Metrics.Path, s.provider)
	}

	return nil
}

// Handler returns the complete HTTP pipeline.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Storage returns the shared database pool.
func (s *Server) Storage() storage.Storage {
	return s.store
}

// AppliedMigrations lists the migrations New applied; empty when the schema
// was already current.
func (s *Server) AppliedMigrations() []storage.AppliedMigration {
	return s.applied
}

// ListenAndServe binds the configured address and serves until ctx is done.
// A bind failure is returned before any request is accepted.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains in-flight
// requests for at most the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.metricsServer != nil {
		go func() {
			if err := s.metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-errCh

	slog.Info("Server shutdown complete")
	return nil
}

// Close releases the pool, the rate limiter and the telemetry providers.
func (s *Server) Close() error {
	var errs []error

	if s.limiter != nil {
		s.limiter.Close()
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database pool: %w", err))
		}
	}

	if s.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown observability: %w", err))
		}
	}

	return errors.Join(errs...)
}
