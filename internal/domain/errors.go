package domain

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyHosted = errors.New("session already hosted")
	ErrSessionFull          = errors.New("session is full")
	ErrAlreadyInSession     = errors.New("connection already in a session")
	ErrNotHost              = errors.New("not the session host")
	ErrNotMember            = errors.New("not a session member")
	ErrInvalidName          = errors.New("invalid display name")
	ErrMessageTooLong       = errors.New("chat message too long")
	ErrRateLimited          = errors.New("too many requests")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrProfileNotFound      = errors.New("profile not found")

	ErrMediaPermissionDenied   = errors.New("media permission denied")
	ErrMediaDeviceUnavailable  = errors.New("media device unavailable")
	ErrMediaSecurityRestricted = errors.New("media access restricted")

	ErrSignalRoutingMiss     = errors.New("signal target absent")
	ErrPeerConnectionFailure = errors.New("peer connection failed")
)
