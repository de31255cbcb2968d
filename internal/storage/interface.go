package storage

import (
	"context"
	"io/fs"
	"time"
)

// Supported database backends, selected by the DATABASE_URL scheme.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// livenessQuery is the no-op statement used to prove a pooled connection works.
const livenessQuery = "SELECT 1"

// Storage is a pool of reusable connections to one relational database.
// It is created once at startup and shared by all request handlers.
type Storage interface {
	// Ping runs the liveness query on a pooled connection.
	Ping(ctx context.Context) error

	// Migrate applies the migrations in fsys that are not yet recorded as
	// applied, in version order, and returns the ones it ran.
	Migrate(ctx context.Context, fsys fs.FS) ([]AppliedMigration, error)

	// Driver names the backend (sqlite, postgres, mysql).
	Driver() string

	// Close releases every pooled connection.
	Close() error
}

// AppliedMigration describes one migration run by Migrate.
type AppliedMigration struct {
	Version  int64         `json:"version"`
	Source   string        `json:"source"`
	Duration time.Duration `json:"duration"`
}
