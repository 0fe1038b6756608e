// Package sqlite serves viewing lookups from a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/viewing/internal/domain"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Property(ctx context.Context, propertyID string) (domain.PropertySummary, error) {
	query := `SELECT id, address, price, bedrooms FROM properties WHERE id = $1`

	var (
		p     domain.PropertySummary
		price string
	)
	if err := s.db.QueryRowContext(ctx, query, propertyID).Scan(&p.ID, &p.Address, &price, &p.Bedrooms); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PropertySummary{}, domain.ErrPropertyNotFound
		}
		return domain.PropertySummary{}, fmt.Errorf("error querying property: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.PropertySummary{}, fmt.Errorf("error parsing price: %w", err)
	}
	p.Price = d
	return p, nil
}

func (s *Store) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	query := `SELECT user_id, display_name FROM profiles WHERE user_id = $1`

	var p domain.Profile
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.DisplayName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		return domain.Profile{}, fmt.Errorf("error querying profile: %w", err)
	}
	return p, nil
}

func (s *Store) SessionMetadata(ctx context.Context, sid domain.SessionID) (domain.SessionMetadata, error) {
	query := `SELECT id, COALESCE(property_id, ''), scheduled_at FROM viewing_sessions WHERE id = $1`

	var (
		m           domain.SessionMetadata
		scheduledAt time.Time
	)
	if err := s.db.QueryRowContext(ctx, query, string(sid)).Scan(&m.SessionID, &m.PropertyID, &scheduledAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SessionMetadata{}, domain.ErrSessionNotFound
		}
		return domain.SessionMetadata{}, fmt.Errorf("error querying session: %w", err)
	}
	m.ScheduledAt = scheduledAt
	return m, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
