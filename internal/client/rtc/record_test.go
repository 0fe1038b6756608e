package rtc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func endedSink(kind webrtc.RTPCodecType, codec webrtc.RTPCodecCapability) *TrackSink {
	return NewTrackSink(kind, webrtc.RTPCodecParameters{RTPCodecCapability: codec}, func() (*rtp.Packet, error) {
		return nil, io.EOF
	})
}

func TestFileSurface_OpensOneFilePerSupportedTrack(t *testing.T) {
	req := require.New(t)

	// Given a surface writing into a temp dir
	dir := t.TempDir()
	s := NewFileSurface(dir, zerolog.Nop())

	// When a VP8, an Opus and an H264 track are attached
	video := endedSink(webrtc.RTPCodecTypeVideo, webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000})
	audio := endedSink(webrtc.RTPCodecTypeAudio, webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2})
	other := endedSink(webrtc.RTPCodecTypeVideo, webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264, ClockRate: 90000})
	s.Attach(video)
	s.Attach(audio)
	s.Attach(other)

	// Then only the first two get files, which survive Close
	req.FileExists(filepath.Join(dir, "video-1.ivf"))
	req.FileExists(filepath.Join(dir, "audio-2.ogg"))
	entries, err := os.ReadDir(dir)
	req.NoError(err)
	req.Len(entries, 2)
	req.NoError(s.Close())
	req.Zero(s.Packets())
}

func TestFileSurface_WritesOnlyWhileRecording(t *testing.T) {
	req := require.New(t)

	// Given an Opus track attached to a paused surface
	dir := t.TempDir()
	s := NewFileSurface(dir, zerolog.Nop())
	s.SetRecording(false)

	pkts := make(chan *rtp.Packet)
	codec := webrtc.RTPCodecParameters{RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}}
	sink := NewTrackSink(webrtc.RTPCodecTypeAudio, codec, func() (*rtp.Packet, error) {
		p, ok := <-pkts
		if !ok {
			return nil, io.EOF
		}
		return p, nil
	})
	s.Attach(sink)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan struct{})
	go func() {
		sink.Run(ctx, zerolog.Nop())
		close(done)
	}()

	path := filepath.Join(dir, "audio-1.ogg")
	size := func() int64 {
		fi, err := os.Stat(path)
		req.NoError(err)
		return fi.Size()
	}
	// an empty payload is skipped by the writer; once it is read, the packet before it has been handled
	deliver := func(seq uint16) {
		pkts <- &rtp.Packet{Header: rtp.Header{SequenceNumber: seq, Timestamp: uint32(seq) * 960}, Payload: []byte{0xf8, 0xff, 0xfe}}
		pkts <- &rtp.Packet{Header: rtp.Header{SequenceNumber: seq}}
	}
	empty := size()

	// When audio arrives before, during and after recording
	deliver(1)
	paused := size()
	s.SetRecording(true)
	deliver(2)
	recorded := size()
	s.SetRecording(false)
	deliver(3)
	stopped := size()

	// Then only the recorded stretch reached the file
	req.Equal(empty, paused)
	req.Greater(recorded, paused)
	req.Equal(recorded, stopped)

	close(pkts)
	<-done
	req.Equal(uint64(6), sink.Packets())
	req.NoError(s.Close())
}
