package protocol

import (
	"errors"

	"github.com/dkeye/viewing/internal/domain"
)

// ErrorMessage turns a relay error into the text shown to the originating client.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return "This viewing session does not exist or has already ended"
	case errors.Is(err, domain.ErrSessionAlreadyHosted):
		return "This viewing session already has a host"
	case errors.Is(err, domain.ErrSessionFull):
		return "This viewing session is full"
	case errors.Is(err, domain.ErrAlreadyInSession):
		return "You are already part of a viewing session"
	case errors.Is(err, domain.ErrNotHost):
		return "Only the host can do that"
	case errors.Is(err, domain.ErrNotMember):
		return "You are not part of this viewing session"
	case errors.Is(err, domain.ErrInvalidName):
		return "Display name is too long"
	case errors.Is(err, domain.ErrMessageTooLong):
		return "Message is too long"
	case errors.Is(err, domain.ErrRateLimited):
		return "Too many attempts, please wait a moment"
	default:
		return "Something went wrong"
	}
}
