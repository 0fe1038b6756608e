//go:generate go run go.uber.org/mock/mockgen -source=lookup.go -destination=../mocks/mock_lookup.go -package=mocks
package core

import (
	"context"

	"github.com/dkeye/viewing/internal/domain"
)

// PropertyLookup resolves the property shown in a viewing.
type PropertyLookup interface {
	Property(ctx context.Context, propertyID string) (domain.PropertySummary, error)
}

// ProfileLookup resolves an authenticated user's display identity.
type ProfileLookup interface {
	Profile(ctx context.Context, userID string) (domain.Profile, error)
}

// SessionMetadataLookup resolves the scheduled viewing a host opens.
// Implementations return domain.ErrSessionNotFound for unknown ids.
type SessionMetadataLookup interface {
	SessionMetadata(ctx context.Context, sid domain.SessionID) (domain.SessionMetadata, error)
}

// Lookups bundles the optional collaborators; any field may be nil.
type Lookups struct {
	Properties PropertyLookup
	Profiles   ProfileLookup
	Sessions   SessionMetadataLookup
}
