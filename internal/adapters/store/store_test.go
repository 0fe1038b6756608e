package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkeye/viewing/internal/config"
	"github.com/dkeye/viewing/internal/domain"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedSQLite(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO properties (id, address, price, bedrooms) VALUES ('p-1', '12 Elm Street', '450000.50', 3)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO profiles (user_id, display_name) VALUES ('u-1', 'Dana')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO viewing_sessions (id, property_id, scheduled_at) VALUES ('s-1', 'p-1', ?)`, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestOpen_SQLiteLookups(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	// Given a migrated and seeded sqlite file
	path := filepath.Join(t.TempDir(), "viewing.db")
	b, err := Open(ctx, config.StoreConfig{Driver: "sqlite", DSN: path, Migrate: true})
	req.NoError(err)
	defer b.Close()
	seedSQLite(t, path)

	// When / Then
	req.NoError(b.Ping(ctx))

	p, err := b.Property(ctx, "p-1")
	req.NoError(err)
	req.Equal("12 Elm Street", p.Address)
	req.True(decimal.RequireFromString("450000.50").Equal(p.Price))
	req.Equal(3, p.Bedrooms)

	prof, err := b.Profile(ctx, "u-1")
	req.NoError(err)
	req.Equal("Dana", prof.DisplayName)

	meta, err := b.SessionMetadata(ctx, "s-1")
	req.NoError(err)
	req.Equal("p-1", meta.PropertyID)

	_, err = b.SessionMetadata(ctx, "missing")
	req.ErrorIs(err, domain.ErrSessionNotFound)
	_, err = b.Property(ctx, "missing")
	req.ErrorIs(err, domain.ErrPropertyNotFound)
	_, err = b.Profile(ctx, "missing")
	req.ErrorIs(err, domain.ErrProfileNotFound)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "viewing.db")

	for i := 0; i < 2; i++ {
		b, err := Open(ctx, config.StoreConfig{Driver: "sqlite", DSN: path, Migrate: true})
		req.NoError(err)
		req.NoError(b.Close())
	}
}

func TestOpen_NoneAndUnknown(t *testing.T) {
	req := require.New(t)

	b, err := Open(context.Background(), config.StoreConfig{Driver: "none"})
	req.NoError(err)
	req.Nil(b)
	req.Nil(Lookups(nil).Sessions)

	_, err = Open(context.Background(), config.StoreConfig{Driver: "mongo"})
	req.Error(err)
}
