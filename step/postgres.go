package step

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Migrate applies Postgres schema migrations before the service starts.
// A database already at the latest version is success, not a failure, so
// restarts of an already-initialized container pass straight through.
type Migrate struct {
	DSN string
	// Migrations holds the *.sql migration files, typically an embed.FS.
	Migrations fs.FS
	// Dir is the directory within Migrations, "migrations" by default.
	Dir string

	db *sql.DB
}

func (m *Migrate) Run(ctx context.Context) error {
	db, err := sql.Open("pgx", m.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	m.db = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	dir := m.Dir
	if dir == "" {
		dir = "migrations"
	}
	source, err := iofs.New(m.Migrations, dir)
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases the migration connection on failure paths. After a
// successful handoff nothing runs, which is fine: the exec replace closes
// every descriptor not marked close-on-exec-exempt anyway.
func (m *Migrate) Close() {
	if m.db != nil {
		m.db.Close() //nolint:errcheck
	}
}
