package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // database/sql driver used by golang-migrate

	"github.com/DavidZachariahWC/trademarks-public/internal/db"
	"github.com/DavidZachariahWC/trademarks-public/migrations"
)

// Migrate applies every pending embedded migration.
func (s *Store) Migrate(ctx context.Context) error {
	return s.withMigrator(ctx, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
}

// MigrateDown reverts every applied migration.
func (s *Store) MigrateDown(ctx context.Context) error {
	return s.withMigrator(ctx, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
}

// MigrationVersion reports the applied schema version. Zero means no migration ran.
func (s *Store) MigrationVersion(ctx context.Context) (version uint, dirty bool, err error) {
	err = s.withMigrator(ctx, func(m *migrate.Migrate) error {
		v, d, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		version, dirty = v, d
		return verr
	})
	return version, dirty, err
}

func (s *Store) withMigrator(ctx context.Context, fn func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return wrapErr(db.OpMigrate, err)
	}

	conn, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return wrapErr(db.OpMigrate, fmt.Errorf("open migration connection: %w", err))
	}
	defer conn.Close()

	driver, err := migratepg.WithInstance(conn, &migratepg.Config{})
	if err != nil {
		return wrapErr(db.OpMigrate, fmt.Errorf("create migration driver: %w", err))
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return wrapErr(db.OpMigrate, fmt.Errorf("open migration source: %w", err))
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return wrapErr(db.OpMigrate, fmt.Errorf("create migrator: %w", err))
	}
	defer m.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := fn(m); err != nil {
		return wrapErr(db.OpMigrate, err)
	}
	return nil
}
