package viewer

import (
	"context"
	"encoding/json"

	"github.com/dkeye/viewing/internal/client/media"
	"github.com/dkeye/viewing/internal/client/rtc"
	"github.com/dkeye/viewing/internal/client/signaling"
	"github.com/dkeye/viewing/internal/domain"
)

// Channel is the viewer's relay connection. The controller owns its lifetime.
type Channel interface {
	Join(sid domain.SessionID, userID *string, name string) error
	Leave(sid domain.SessionID) error
	SendSignal(to domain.ConnID, signal json.RawMessage) error
	SendChat(sid domain.SessionID, message string) error
	Events() <-chan signaling.Event
	Close() error
}

type Acquirer interface {
	Acquire(ctx context.Context) (*media.Acquisition, error)
}

type Peer interface {
	HandleSignal(from domain.ConnID, raw json.RawMessage) error
	Failures() <-chan error
	State() rtc.State
	Close() error
}

// PeerFactory builds the responding peer bound to the host and the local media.
type PeerFactory func(host domain.ConnID, acq *media.Acquisition, send rtc.SendFunc) (Peer, error)

// RTCPeerFactory builds pion-backed responders.
func RTCPeerFactory(cfg rtc.PeerConfig) PeerFactory {
	return func(host domain.ConnID, acq *media.Acquisition, send rtc.SendFunc) (Peer, error) {
		c := cfg
		c.Role = rtc.Responder
		c.Remote = host
		c.Tracks = acq.LocalTracks()
		c.Send = send
		return rtc.NewPeer(c)
	}
}
