//go:generate go run go.uber.org/mock/mockgen -source=media.go -destination=../../mocks/mock_media.go -package=mocks

// Package media acquires local camera and microphone tracks with a fixed
// fallback ladder and owns their release.
package media

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// Constraints selects the kinds requested from the capture devices.
type Constraints struct {
	Video bool
	Audio bool
}

func (c Constraints) String() string {
	switch {
	case c.Video && c.Audio:
		return "video+audio"
	case c.Video:
		return "video"
	case c.Audio:
		return "audio"
	default:
		return "none"
	}
}

// Track is one captured track.
type Track interface {
	ID() string
	Kind() webrtc.RTPCodecType
	Stop()
}

// LocalTrack is a Track that can be sent on a peer connection.
type LocalTrack interface {
	Track
	Local() webrtc.TrackLocal
}

type Stream interface {
	Tracks() []Track
}

// Devices is the capture runtime. Failures should carry a *DeviceError
// so the ladder can classify them.
type Devices interface {
	GetUserMedia(ctx context.Context, c Constraints) (Stream, error)
}
