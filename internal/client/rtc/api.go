// Package rtc owns the client peer connections: one responder per viewer,
// one initiator per viewer on the host.
package rtc

import (
	"fmt"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"
)

const DefaultSTUN = "stun:stun.l.google.com:19302"

func DefaultConfiguration(stun ...string) webrtc.Configuration {
	if len(stun) == 0 {
		stun = []string{DefaultSTUN}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: stun,
			},
		},
	}
}

// NewAPI builds a webrtc API. populate registers the codecs of a capture
// codec selector; nil registers pion's defaults.
func NewAPI(populate func(*webrtc.MediaEngine)) (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	if populate != nil {
		populate(m)
	} else if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register default codecs: %w", err)
	}
	i := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, i); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}
	return webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithInterceptorRegistry(i)), nil
}
