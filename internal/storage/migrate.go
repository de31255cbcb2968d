package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// migrate applies every pending migration in fsys. Applied versions are
// tracked by goose in its version table, which makes reruns no-ops.
func migrate(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) ([]AppliedMigration, error) {
	if fsys == nil {
		return nil, fmt.Errorf("migration source is required")
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	applied := make([]AppliedMigration, 0, len(results))
	for _, r := range results {
		m := AppliedMigration{
			Version:  r.Source.Version,
			Source:   r.Source.Path,
			Duration: r.Duration,
		}
		slog.Info("Applied migration",
			"version", m.Version,
			"source", m.Source,
			"duration", m.Duration)
		applied = append(applied, m)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return applied, fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Info("Database schema up to date", "version", version, "applied", len(applied))

	return applied, nil
}
