package media

import (
	"context"
	"errors"
	"os"
	"strings"
	"syscall"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// MediaDevices captures through pion/mediadevices. Drivers and encoders are
// registered by the binary that builds the codec selector.
type MediaDevices struct {
	selector *mediadevices.CodecSelector
}

func NewMediaDevices(selector *mediadevices.CodecSelector) *MediaDevices {
	return &MediaDevices{selector: selector}
}

func (d *MediaDevices) GetUserMedia(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msc := mediadevices.MediaStreamConstraints{Codec: d.selector}
	if c.Video {
		msc.Video = func(tc *mediadevices.MediaTrackConstraints) {
			tc.Width = prop.Int(640)
			tc.Height = prop.Int(480)
			tc.FrameRate = prop.Float(30)
		}
	}
	if c.Audio {
		msc.Audio = func(tc *mediadevices.MediaTrackConstraints) {
			tc.SampleRate = prop.Int(48000)
			tc.ChannelCount = prop.Int(1)
		}
	}
	s, err := mediadevices.GetUserMedia(msc)
	if err != nil {
		return nil, &DeviceError{Name: deviceErrorName(err), Err: err}
	}
	return &deviceStream{stream: s}, nil
}

func deviceErrorName(err error) string {
	switch {
	case errors.Is(err, os.ErrPermission), errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return NotAllowedError
	case errors.Is(err, syscall.EBUSY):
		return NotReadableError
	case errors.Is(err, os.ErrNotExist), strings.Contains(err.Error(), "failed to find"):
		return NotFoundError
	default:
		return ""
	}
}

type deviceStream struct {
	stream mediadevices.MediaStream
}

func (s *deviceStream) Tracks() []Track {
	tracks := s.stream.GetTracks()
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, &deviceTrack{track: t})
	}
	return out
}

type deviceTrack struct {
	track mediadevices.Track
}

func (t *deviceTrack) ID() string                { return t.track.ID() }
func (t *deviceTrack) Kind() webrtc.RTPCodecType { return t.track.Kind() }
func (t *deviceTrack) Local() webrtc.TrackLocal  { return t.track }

func (t *deviceTrack) Stop() {
	if err := t.track.Close(); err != nil {
		log.Warn().Err(err).Str("module", "media").Str("track", t.track.ID()).Msg("track close")
	}
}
