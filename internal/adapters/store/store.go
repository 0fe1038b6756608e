// Package store opens the configured lookup backend and applies its schema.
package store

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/dkeye/viewing"
	"github.com/dkeye/viewing/internal/adapters/store/postgres"
	"github.com/dkeye/viewing/internal/adapters/store/sqlite"
	"github.com/dkeye/viewing/internal/config"
	"github.com/dkeye/viewing/internal/core"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

// Backend serves every lookup and can be health-checked.
type Backend interface {
	core.PropertyLookup
	core.ProfileLookup
	core.SessionMetadataLookup
	Ping(ctx context.Context) error
	Close() error
}

// Lookups exposes b through the relay's collaborator ports. A nil backend yields no lookups.
func Lookups(b Backend) core.Lookups {
	if b == nil {
		return core.Lookups{}
	}
	return core.Lookups{Properties: b, Profiles: b, Sessions: b}
}

// Open returns nil, nil for the "none" driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Backend, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := migrateUp(cfg.DSN, "postgres"); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return postgres.New(pool), nil
	case "sqlite":
		if cfg.Migrate {
			if err := migrateUp("sqlite3://"+cfg.DSN, "sqlite"); err != nil {
				return nil, err
			}
		}
		s, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func migrateUp(databaseURL, dialect string) error {
	migrationsFS, err := fs.Sub(viewing.MigrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	return RunMigrations(databaseURL, migrationsFS)
}

func RunMigrations(databaseURL string, migrationsFS fs.FS) error {
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info().Str("module", "store").Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	return nil
}
