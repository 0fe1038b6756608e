package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxDisplayNameLen = 64
	AnonymousName     = "Guest"
)

// NormalizeName trims a display name and enforces its length bounds.
// An empty name falls back to AnonymousName, anonymous viewers are allowed.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousName, nil
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", ErrInvalidName
	}
	return name, nil
}

// IsAnonymous reports whether the participant joined without a user id.
func (p Participant) IsAnonymous() bool {
	return p.UserID == nil || *p.UserID == ""
}
