package signaling

import (
	"encoding/json"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/protocol"
)

// Event is one inbound relay event. Consumers switch on the concrete type.
type Event interface {
	isEvent()
}

type (
	Hosted struct {
		protocol.HostAccepted
	}
	HostRejected struct {
		Message string
	}
	JoinAccepted struct {
		protocol.JoinAccepted
	}
	JoinRejected struct {
		Message string
	}
	Signal struct {
		From    domain.ConnID
		Payload json.RawMessage
	}
	// RosterChanged carries exactly one of Joined or Left.
	RosterChanged struct {
		Joined *domain.Participant
		Left   *protocol.ParticipantGone
	}
	Chat struct {
		domain.ChatMessage
	}
	RecordingChanged struct {
		IsRecording bool
	}
	SessionEnded struct {
		SessionID domain.SessionID
		Message   string
	}
	// Failed is a relay error not tied to hosting or joining.
	Failed struct {
		Message string
	}
	// Disconnected is the last event on a channel.
	Disconnected struct {
		Err error
	}
)

func (Hosted) isEvent()           {}
func (HostRejected) isEvent()     {}
func (JoinAccepted) isEvent()     {}
func (JoinRejected) isEvent()     {}
func (Signal) isEvent()           {}
func (RosterChanged) isEvent()    {}
func (Chat) isEvent()             {}
func (RecordingChanged) isEvent() {}
func (SessionEnded) isEvent()     {}
func (Failed) isEvent()           {}
func (Disconnected) isEvent()     {}

// decodeEvent narrows a relay frame into an Event. Pongs and unknown types yield nil.
func decodeEvent(data []byte) (Event, error) {
	env, err := protocol.Decode(data)
	if err != nil {
		return nil, err
	}
	switch env.Type {
	case protocol.SessionHosted:
		var p protocol.HostAccepted
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return Hosted{p}, nil
	case protocol.HostError:
		var p protocol.Failure
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return HostRejected{Message: p.Message}, nil
	case protocol.SessionJoined:
		var p protocol.JoinAccepted
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return JoinAccepted{p}, nil
	case protocol.JoinError:
		var p protocol.Failure
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return JoinRejected{Message: p.Message}, nil
	case protocol.Signal:
		var p domain.SignalEnvelope
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return Signal{From: p.From, Payload: p.Signal}, nil
	case protocol.ParticipantJoined:
		var p domain.Participant
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return RosterChanged{Joined: &p}, nil
	case protocol.ParticipantLeft:
		var p protocol.ParticipantGone
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return RosterChanged{Left: &p}, nil
	case protocol.ChatMessage:
		var p domain.ChatMessage
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return Chat{p}, nil
	case protocol.RecordingFlag:
		var p protocol.Recording
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return RecordingChanged{IsRecording: p.IsRecording}, nil
	case protocol.SessionEnded:
		var p protocol.Ended
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return SessionEnded{SessionID: p.SessionID, Message: p.Message}, nil
	case protocol.Error:
		var p protocol.Failure
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return Failed{Message: p.Message}, nil
	default:
		return nil, nil
	}
}
