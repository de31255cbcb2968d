package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"grocerynana/internal/config"
	"grocerynana/internal/logger"
	"grocerynana/internal/server"
	"grocerynana/internal/version"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, creates the pool, migrates and serves until SIGINT
// or SIGTERM. Any error before the listener is bound aborts startup.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ver := version.GetInfo()

	log, closer, err := logger.Setup(cfg.Logging, ver)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	slog.Info("Starting GroceryNana backend", "build", ver.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, ver)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			slog.Error("Failed to release resources", "error", err)
		}
	}()

	return srv.ListenAndServe(ctx)
}
