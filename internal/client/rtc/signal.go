package rtc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
)

var ErrMalformedSignal = errors.New("malformed signal")

// Signal is a narrowed relay payload: SessionDescription or Candidate.
type Signal interface {
	isSignal()
}

type SessionDescription struct {
	webrtc.SessionDescription
}

type Candidate struct {
	webrtc.ICECandidateInit
}

func (SessionDescription) isSignal() {}
func (Candidate) isSignal()          {}

type rawSignal struct {
	Type      string          `json:"type"`
	SDP       string          `json:"sdp"`
	Candidate json.RawMessage `json:"candidate"`
}

// ParseSignal validates an opaque relay payload before it reaches a peer
// connection. It accepts {type, sdp} descriptions, bare ICE candidate inits
// and {type:"candidate", candidate:{...}} wrappers.
func ParseSignal(raw json.RawMessage) (Signal, error) {
	var rs rawSignal
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignal, err)
	}
	switch {
	case rs.Type == "candidate":
		return parseCandidate(rs.Candidate)
	case rs.Type != "":
		t := webrtc.NewSDPType(rs.Type)
		if t != webrtc.SDPTypeOffer && t != webrtc.SDPTypeAnswer {
			return nil, fmt.Errorf("%w: unsupported description type %q", ErrMalformedSignal, rs.Type)
		}
		if rs.SDP == "" {
			return nil, fmt.Errorf("%w: empty sdp", ErrMalformedSignal)
		}
		return SessionDescription{webrtc.SessionDescription{Type: t, SDP: rs.SDP}}, nil
	case len(rs.Candidate) > 0:
		return parseCandidate(raw)
	default:
		return nil, fmt.Errorf("%w: neither description nor candidate", ErrMalformedSignal)
	}
}

func parseCandidate(raw json.RawMessage) (Signal, error) {
	var c webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignal, err)
	}
	if c.Candidate == "" {
		return nil, fmt.Errorf("%w: empty candidate", ErrMalformedSignal)
	}
	return Candidate{c}, nil
}

func encodeDescription(d *webrtc.SessionDescription) (json.RawMessage, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode description: %w", err)
	}
	return b, nil
}
