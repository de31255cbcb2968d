package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"grocerynana/internal/models"

	"github.com/pressly/goose/v3"
)

// MySQLStorage is a database/sql pool over go-sql-driver/mysql.
// The driver registers itself through the import in factory.go.
type MySQLStorage struct {
	db *sql.DB
}

// NewMySQLStorage opens and pings a MySQL pool. dsn is in driver format,
// as produced by ParseURL.
func NewMySQLStorage(ctx context.Context, dsn string, cfg models.DatabaseConfig) (*MySQLStorage, error) {
	if dsn == "" {
		return nil, fmt.Errorf("connection string is required for MySQL storage")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLStorage{db: db}, nil
}

// Ping runs the liveness query.
func (ms *MySQLStorage) Ping(ctx context.Context) error {
	return pingSQL(ctx, ms.db)
}

// Migrate applies pending migrations using the mysql dialect.
func (ms *MySQLStorage) Migrate(ctx context.Context, fsys fs.FS) ([]AppliedMigration, error) {
	return migrate(ctx, goose.DialectMySQL, ms.db, fsys)
}

func (ms *MySQLStorage) Driver() string {
	return DriverMySQL
}

func (ms *MySQLStorage) Close() error {
	return ms.db.Close()
}
