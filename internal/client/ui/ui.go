//go:generate go run go.uber.org/mock/mockgen -source=ui.go -destination=../../mocks/mock_ui.go -package=mocks

// Package ui is the surface the session controllers drive.
package ui

import (
	"context"

	"github.com/dkeye/viewing/internal/client/media"
	"github.com/dkeye/viewing/internal/domain"
)

type Level int

const (
	Info Level = iota
	Warning
	Error
)

// UI receives every user-facing side effect. Calls come from the controller
// goroutine and must not block, except ConfirmJoin.
type UI interface {
	Toast(level Level, message string)
	// ConfirmJoin shows the join dialog. It returns the display name to join
	// with, or false when the user cancels.
	ConfirmJoin(ctx context.Context, capability media.Capability, name string) (string, bool)
	ShowRoster(host domain.ConnID, participants []domain.Participant)
	ShowChat(msg domain.ChatMessage)
	ShowRecording(on bool)
	ShowEnded(message string)
	NavigateAway()
}
