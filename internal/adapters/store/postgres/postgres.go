// Package postgres serves viewing lookups from PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Property(ctx context.Context, propertyID string) (domain.PropertySummary, error) {
	const query = `SELECT id, address, price::text, bedrooms FROM properties WHERE id = $1`

	var (
		p     domain.PropertySummary
		price string
	)
	if err := s.pool.QueryRow(ctx, query, propertyID).Scan(&p.ID, &p.Address, &price, &p.Bedrooms); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PropertySummary{}, domain.ErrPropertyNotFound
		}
		return domain.PropertySummary{}, fmt.Errorf("get property: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.PropertySummary{}, fmt.Errorf("parse price: %w", err)
	}
	p.Price = d
	return p, nil
}

func (s *Store) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `SELECT user_id, display_name FROM profiles WHERE user_id = $1`

	var p domain.Profile
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.DisplayName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *Store) SessionMetadata(ctx context.Context, sid domain.SessionID) (domain.SessionMetadata, error) {
	const query = `SELECT id, COALESCE(property_id, ''), scheduled_at FROM viewing_sessions WHERE id = $1`

	var m domain.SessionMetadata
	if err := s.pool.QueryRow(ctx, query, string(sid)).Scan(&m.SessionID, &m.PropertyID, &m.ScheduledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SessionMetadata{}, domain.ErrSessionNotFound
		}
		return domain.SessionMetadata{}, fmt.Errorf("get session metadata: %w", err)
	}
	return m, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
