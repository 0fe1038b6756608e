package media

import (
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

// Capability is the local media state. HasAudio/HasVideo describe what was
// acquired; the Enabled flags follow user toggles and decide whether the
// track's packets leave this machine.
type Capability struct {
	HasAudio     bool
	HasVideo     bool
	AudioEnabled bool
	VideoEnabled bool
}

// Acquisition owns the captured stream until Release.
type Acquisition struct {
	mu         sync.Mutex
	capability Capability
	stream     Stream
	gates      []*GatedTrack
	once       sync.Once
	logger     zerolog.Logger
}

func newAcquisition(stream Stream, logger zerolog.Logger) *Acquisition {
	a := &Acquisition{stream: stream, logger: logger}
	if stream == nil {
		return a
	}
	for _, t := range stream.Tracks() {
		if lt, ok := t.(LocalTrack); ok {
			a.gates = append(a.gates, NewGatedTrack(lt.Local()))
		}
		switch t.Kind() {
		case webrtc.RTPCodecTypeAudio:
			a.capability.HasAudio, a.capability.AudioEnabled = true, true
		case webrtc.RTPCodecTypeVideo:
			a.capability.HasVideo, a.capability.VideoEnabled = true, true
		}
	}
	return a
}

func (a *Acquisition) Capability() Capability {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capability
}

// Tracks returns nil once released or when nothing was acquired.
func (a *Acquisition) Tracks() []Track {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stream == nil {
		return nil
	}
	return a.stream.Tracks()
}

// LocalTracks returns the tracks that can be added to a peer connection.
// They stay silent while their kind is disabled. Safe on a nil receiver.
func (a *Acquisition) LocalTracks() []webrtc.TrackLocal {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stream == nil {
		return nil
	}
	out := make([]webrtc.TrackLocal, 0, len(a.gates))
	for _, g := range a.gates {
		out = append(out, g)
	}
	return out
}

// SetAudioEnabled reports whether the toggle applied; it is refused when no audio was acquired.
func (a *Acquisition) SetAudioEnabled(on bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.capability.HasAudio || a.stream == nil {
		return false
	}
	a.capability.AudioEnabled = on
	a.gateLocked(webrtc.RTPCodecTypeAudio, on)
	return true
}

func (a *Acquisition) SetVideoEnabled(on bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.capability.HasVideo || a.stream == nil {
		return false
	}
	a.capability.VideoEnabled = on
	a.gateLocked(webrtc.RTPCodecTypeVideo, on)
	return true
}

func (a *Acquisition) gateLocked(kind webrtc.RTPCodecType, on bool) {
	for _, g := range a.gates {
		if g.Kind() == kind {
			g.SetOpen(on)
		}
	}
	a.logger.Info().Str("kind", kind.String()).Bool("enabled", on).Msg("outbound media toggled")
}

// Release stops every track of the stream exactly once. Safe on a nil receiver.
func (a *Acquisition) Release() {
	if a == nil {
		return
	}
	a.once.Do(func() {
		a.mu.Lock()
		stream := a.stream
		a.stream = nil
		a.capability = Capability{}
		a.mu.Unlock()
		if stream == nil {
			return
		}
		tracks := stream.Tracks()
		for _, t := range tracks {
			t.Stop()
		}
		a.logger.Info().Int("tracks", len(tracks)).Msg("media released")
	})
}
