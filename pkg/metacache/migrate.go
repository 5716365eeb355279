package metacache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // pure-Go database/sql driver backing golang-migrate's sqlite driver

	"github.com/marmos91/dfsclient/internal/logger"
	"github.com/marmos91/dfsclient/pkg/metacache/migrations"
)

// runMigrations applies the metacache schema to the SQLite file at path,
// mirroring the way the coordinator-facing stores in this codebase's
// teacher run golang-migrate against an embedded source.
func runMigrations(ctx context.Context, path string) error {
	log := logger.With("component", "metacache_migrate")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite database: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply metacache migrations: %w", err)
	} else if err == migrate.ErrNoChange {
		log.Debug("metacache schema up to date")
	} else {
		log.Debug("metacache migrations applied")
	}

	return nil
}
