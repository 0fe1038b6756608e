package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/stretchr/testify/require"
)

// Needs a migrated database: VIEWING_TEST_POSTGRES_DSN=postgres://... go test ./...
func TestStore_Lookups(t *testing.T) {
	dsn := os.Getenv("VIEWING_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VIEWING_TEST_POSTGRES_DSN not set")
	}
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, dsn)
	req.NoError(err)
	s := New(pool)
	defer s.Close()

	_, err = pool.Exec(ctx, `INSERT INTO properties (id, address, price, bedrooms) VALUES ('pg-p1', '1 Main St', 325000, 2) ON CONFLICT DO NOTHING`)
	req.NoError(err)
	_, err = pool.Exec(ctx, `INSERT INTO viewing_sessions (id, property_id, scheduled_at) VALUES ('pg-s1', 'pg-p1', NOW()) ON CONFLICT DO NOTHING`)
	req.NoError(err)

	meta, err := s.SessionMetadata(ctx, "pg-s1")
	req.NoError(err)
	req.Equal("pg-p1", meta.PropertyID)

	p, err := s.Property(ctx, meta.PropertyID)
	req.NoError(err)
	req.Equal("325000", p.Price.String())

	_, err = s.Profile(ctx, "nobody")
	req.ErrorIs(err, domain.ErrProfileNotFound)
}
