package app

import "github.com/dkeye/viewing/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose outbound buffer is full.
type Policy interface {
	OnBackPressure(sid domain.SessionID, conn domain.ConnID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.SessionID, domain.ConnID) BackpressureAction {
	return KickMember
}

// LenientPolicy drops the frame and keeps the member connected.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(domain.SessionID, domain.ConnID) BackpressureAction {
	return DropFrame
}
