package rtc

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfwriter"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
	"github.com/rs/zerolog"
)

type fileWriter interface {
	PacketWriter
	Close() error
}

// FileSurface writes every attached VP8 track to an .ivf file and every Opus
// track to an .ogg file under Dir. Other codecs are only counted. While
// paused, packets are read but not written.
type FileSurface struct {
	Dir    string
	Logger zerolog.Logger

	mu      sync.Mutex
	seq     int
	paused  bool
	writers []fileWriter
	outputs []*Output
	sinks   []*TrackSink
}

func NewFileSurface(dir string, logger zerolog.Logger) *FileSurface {
	return &FileSurface{
		Dir:    dir,
		Logger: logger.With().Str("module", "rtc.surface").Logger(),
	}
}

func (s *FileSurface) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.paused
}

// SetRecording resumes or pauses writing on every file, current and future.
func (s *FileSurface) SetRecording(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !on
	for _, o := range s.outputs {
		if o.State() == OutputDelete {
			continue
		}
		if on {
			o.MarkOk()
		} else {
			o.MarkMuted()
		}
	}
	s.Logger.Info().Bool("recording", on).Int("files", len(s.outputs)).Msg("track files toggled")
}

func (s *FileSurface) Attach(sink *TrackSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.sinks = append(s.sinks, sink)

	mime := strings.ToLower(sink.Codec.MimeType)
	var (
		w    fileWriter
		path string
		err  error
	)
	switch mime {
	case strings.ToLower(webrtc.MimeTypeVP8):
		path = filepath.Join(s.Dir, fmt.Sprintf("video-%d.ivf", s.seq))
		w, err = ivfwriter.New(path)
	case strings.ToLower(webrtc.MimeTypeOpus):
		path = filepath.Join(s.Dir, fmt.Sprintf("audio-%d.ogg", s.seq))
		w, err = oggwriter.New(path, sink.Codec.ClockRate, sink.Codec.Channels)
	default:
		s.Logger.Warn().Str("codec", sink.Codec.MimeType).Msg("no file writer for codec")
		return
	}
	if err != nil {
		s.Logger.Error().Err(err).Str("path", path).Msg("open track file failed")
		return
	}
	s.writers = append(s.writers, w)
	out := sink.AddOutput(path, w)
	if s.paused {
		out.MarkMuted()
	}
	s.outputs = append(s.outputs, out)
	s.Logger.Info().Str("path", path).Str("codec", sink.Codec.MimeType).Msg("writing remote track")
}

// Packets sums the packets read by every attached sink.
func (s *FileSurface) Packets() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n uint64
	for _, sink := range s.sinks {
		n += sink.Packets()
	}
	return n
}

// Close finalizes every open file.
func (s *FileSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for _, w := range s.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.writers = nil
	return first
}
