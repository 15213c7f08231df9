package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/isdelr/mediaverse-be/internal/database/migrations"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported SQL backends.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// New creates a new database connection pool for driver. For SQLite the
// source is a file path, for PostgreSQL a connection string.
func New(ctx context.Context, driver, source string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case SQLite:
		db, err = sql.Open("sqlite", source+"?"+sqlitePragmas)
		if err == nil {
			// SQLite allows a single writer.
			db.SetMaxOpenConns(1)
		}
	case Postgres:
		db, err = sql.Open("pgx", source)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect := "sqlite3"
	if driver == Postgres {
		dialect = "postgres"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
