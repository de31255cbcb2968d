package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"grocerynana/internal/models"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteStorage is a database/sql pool over the pure-Go SQLite driver.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the SQLite database named by target, creating the
// file if it does not exist. An in-memory database is pinned to a single
// connection that never expires, so every caller sees the same schema.
func NewSQLiteStorage(ctx context.Context, target Target, cfg models.DatabaseConfig) (*SQLiteStorage, error) {
	if target.DSN == "" {
		return nil, fmt.Errorf("connection string is required for SQLite storage")
	}

	db, err := sql.Open("sqlite", target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if target.InMemory {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
		cfg.ConnMaxIdleTime = 0
	}
	configurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Ping runs the liveness query.
func (ss *SQLiteStorage) Ping(ctx context.Context) error {
	return pingSQL(ctx, ss.db)
}

// Migrate applies pending migrations using the sqlite3 dialect.
func (ss *SQLiteStorage) Migrate(ctx context.Context, fsys fs.FS) ([]AppliedMigration, error) {
	return migrate(ctx, goose.DialectSQLite3, ss.db, fsys)
}

func (ss *SQLiteStorage) Driver() string {
	return DriverSQLite
}

// Close closes the storage connection
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// configurePool applies pool limits. Zero values keep database/sql defaults.
func configurePool(db *sql.DB, cfg models.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

func pingSQL(ctx context.Context, db *sql.DB) error {
	var one int
	if err := db.QueryRowContext(ctx, livenessQuery).Scan(&one); err != nil {
		return fmt.Errorf("liveness query failed: %w", err)
	}
	return nil
}
