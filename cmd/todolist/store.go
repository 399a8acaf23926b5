package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/Strob0t/todolist/internal/adapter/postgres"
	"github.com/Strob0t/todolist/internal/adapter/sqlite"
	"github.com/Strob0t/todolist/internal/config"
	"github.com/Strob0t/todolist/internal/port/database"
)

// backend is an open store together with its migration provider.
type backend struct {
	store    database.Store
	migrator func() (*goose.Provider, func() error, error)
	close    func()
}

// openBackend connects to the configured database. With migrate set, pending
// migrations are applied before the store is returned.
func openBackend(ctx context.Context, cfg *config.Config, migrate bool) (*backend, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		if migrate {
			if err := sqlite.RunMigrations(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
			slog.Info("migrations applied", "driver", cfg.Database.Driver)
		}
		return &backend{
			store: sqlite.NewStore(db),
			migrator: func() (*goose.Provider, func() error, error) {
				p, err := sqlite.Migrator(db)
				return p, func() error { return nil }, err
			},
			close: func() { _ = db.Close() },
		}, nil

	default:
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if migrate {
			if err := postgres.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
			slog.Info("migrations applied", "driver", cfg.Database.Driver)
		}
		return &backend{
			store:    postgres.NewStore(pool),
			migrator: func() (*goose.Provider, func() error, error) { return postgres.Migrator(pool) },
			close:    pool.Close,
		}, nil
	}
}
