package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"math"

	"grocerynana/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresStorage is a pgx connection pool. Migrations run through a
// database/sql view of the same pool, so no second pool is opened.
type PostgresStorage struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance.
func NewPostgresStorage(ctx context.Context, dsn string, cfg models.DatabaseConfig) (*PostgresStorage, error) {
	if dsn == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(min(cfg.MaxOpenConns, math.MaxInt32))
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = "grocerynana-backend"
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStorage{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
	}, nil
}

// Ping runs the liveness query.
func (ps *PostgresStorage) Ping(ctx context.Context) error {
	var one int
	if err := ps.pool.QueryRow(ctx, livenessQuery).Scan(&one); err != nil {
		return fmt.Errorf("liveness query failed: %w", err)
	}
	return nil
}

// Migrate applies pending migrations using the postgres dialect.
func (ps *PostgresStorage) Migrate(ctx context.Context, fsys fs.FS) ([]AppliedMigration, error) {
	return migrate(ctx, goose.DialectPostgres, ps.db, fsys)
}

func (ps *PostgresStorage) Driver() string {
	return DriverPostgres
}

// Close closes the sql.DB view first, then the pool behind it.
func (ps *PostgresStorage) Close() error {
	err := ps.db.Close()
	ps.pool.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
