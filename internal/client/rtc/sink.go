package rtc

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

type OutputState int32

const (
	OutputOk OutputState = iota
	OutputMuted
	OutputDelete
)

// PacketWriter is satisfied by local RTP tracks and pion's ivf/ogg writers.
type PacketWriter interface {
	WriteRTP(pkt *rtp.Packet) error
}

// Output is one consumer of a remote track.
type Output struct {
	w     PacketWriter
	state atomic.Int32
}

func (o *Output) State() OutputState { return OutputState(o.state.Load()) }
func (o *Output) MarkOk()            { o.state.Store(int32(OutputOk)) }
func (o *Output) MarkMuted()         { o.state.Store(int32(OutputMuted)) }
func (o *Output) MarkDelete()        { o.state.Store(int32(OutputDelete)) }

// TrackSink drains one remote track and fans its packets out to outputs.
type TrackSink struct {
	Kind  webrtc.RTPCodecType
	Codec webrtc.RTPCodecParameters

	read func() (*rtp.Packet, error)

	mu      sync.RWMutex
	outputs map[string]*Output
	packets atomic.Uint64
}

func NewTrackSink(kind webrtc.RTPCodecType, codec webrtc.RTPCodecParameters, read func() (*rtp.Packet, error)) *TrackSink {
	return &TrackSink{
		Kind:    kind,
		Codec:   codec,
		read:    read,
		outputs: make(map[string]*Output),
	}
}

func sinkFromTrack(track *webrtc.TrackRemote) *TrackSink {
	return NewTrackSink(track.Kind(), track.Codec(), func() (*rtp.Packet, error) {
		pkt, _, err := track.ReadRTP()
		return pkt, err
	})
}

func (s *TrackSink) AddOutput(name string, w PacketWriter) *Output {
	o := &Output{w: w}
	s.mu.Lock()
	s.outputs[name] = o
	s.mu.Unlock()
	return o
}

// Packets is the number of packets read so far.
func (s *TrackSink) Packets() uint64 { return s.packets.Load() }

// Run reads until ctx is done or the track ends.
func (s *TrackSink) Run(ctx context.Context, logger zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("sink ctx done, marking all outputs for delete")
			s.markAllDelete()
			return
		default:
		}
		pkt, err := s.read()
		if err != nil {
			logger.Info().Err(err).Msg("sink read ended")
			s.markAllDelete()
			return
		}
		s.packets.Add(1)
		s.forward(pkt, logger)
	}
}

func (s *TrackSink) forward(pkt *rtp.Packet, logger zerolog.Logger) {
	s.mu.RLock()
	snapshot := maps.Clone(s.outputs)
	s.mu.RUnlock()

	var dirty []string
	for name, o := range snapshot {
		switch o.State() {
		case OutputDelete:
			dirty = append(dirty, name)
		case OutputMuted:
		case OutputOk:
			if err := o.w.WriteRTP(pkt); err != nil {
				logger.Error().Err(err).Str("output", name).Msg("sink write error, marking output as delete")
				o.MarkDelete()
				dirty = append(dirty, name)
			}
		}
	}
	if len(dirty) > 0 {
		s.mu.Lock()
		for _, name := range dirty {
			delete(s.outputs, name)
		}
		s.mu.Unlock()
	}
}

func (s *TrackSink) markAllDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.outputs {
		o.MarkDelete()
	}
}

// RemoteSurface shows the remote party's media. Attach is called once per remote track.
type RemoteSurface interface {
	Attach(sink *TrackSink)
}
