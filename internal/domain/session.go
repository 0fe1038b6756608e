// Package domain contains entity without logic, just meta-data
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	SessionID string
	ConnID    string
)

// Session is a live viewing: one host connection plus the viewers admitted to it.
type Session struct {
	ID           SessionID
	Host         ConnID
	HostName     string
	CreatedAt    time.Time
	Recording    bool
	Property     *PropertySummary
	Participants []Participant
}

// Participant is a viewer's membership in exactly one session.
type Participant struct {
	ConnID   ConnID    `json:"socketId"`
	UserID   *string   `json:"userId"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// PropertySummary is what viewers see about the property being shown.
type PropertySummary struct {
	ID       string          `json:"id"`
	Address  string          `json:"address"`
	Price    decimal.Decimal `json:"price"`
	Bedrooms int             `json:"bedrooms"`
}

// SessionMetadata is the scheduling record a host session is opened against.
type SessionMetadata struct {
	SessionID   SessionID
	PropertyID  string
	ScheduledAt time.Time
}

type Profile struct {
	UserID      string
	DisplayName string
}
