package media

import (
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// GatedTrack wraps a local track so its packets can be held back on every
// peer connection it is bound to, without renegotiating.
type GatedTrack struct {
	webrtc.TrackLocal
	open atomic.Bool
}

func NewGatedTrack(t webrtc.TrackLocal) *GatedTrack {
	g := &GatedTrack{TrackLocal: t}
	g.open.Store(true)
	return g
}

func (g *GatedTrack) SetOpen(on bool) { g.open.Store(on) }
func (g *GatedTrack) IsOpen() bool    { return g.open.Load() }

func (g *GatedTrack) Bind(ctx webrtc.TrackLocalContext) (webrtc.RTPCodecParameters, error) {
	return g.TrackLocal.Bind(gatedContext{TrackLocalContext: ctx, gate: g})
}

// gatedContext keeps the ID of the wrapped context, which is what bindings are keyed by.
type gatedContext struct {
	webrtc.TrackLocalContext
	gate *GatedTrack
}

func (c gatedContext) WriteStream() webrtc.TrackLocalWriter {
	return gatedWriter{w: c.TrackLocalContext.WriteStream(), gate: c.gate}
}

type gatedWriter struct {
	w    webrtc.TrackLocalWriter
	gate *GatedTrack
}

func (w gatedWriter) WriteRTP(header *rtp.Header, payload []byte) (int, error) {
	if !w.gate.IsOpen() {
		return len(payload), nil
	}
	return w.w.WriteRTP(header, payload)
}

func (w gatedWriter) Write(b []byte) (int, error) {
	if !w.gate.IsOpen() {
		return len(b), nil
	}
	return w.w.Write(b)
}
