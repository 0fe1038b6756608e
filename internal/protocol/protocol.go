// Package protocol defines the signaling channel events exchanged between
// viewers, hosts and the relay. Every frame is an Envelope whose payload
// shape is selected by Type.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkeye/viewing/internal/domain"
)

type EventType string

// Client to relay.
const (
	HostSession   EventType = "host-viewing-session"
	JoinSession   EventType = "join-viewing-session"
	LeaveSession  EventType = "leave-viewing-session"
	EndSession    EventType = "end-viewing-session"
	Ping          EventType = "ping"
	Signal        EventType = "signal"
	ChatMessage   EventType = "viewing-chat-message"
	RecordingFlag EventType = "recording-status-changed"
)

// Relay to client.
const (
	SessionHosted     EventType = "viewing-session-hosted"
	HostError         EventType = "host-error"
	SessionJoined     EventType = "viewing-session-joined"
	JoinError         EventType = "join-error"
	ParticipantJoined EventType = "participant-joined"
	ParticipantLeft   EventType = "participant-left"
	SessionEnded      EventType = "viewing-session-ended"
	Error             EventType = "error"
	Pong              EventType = "pong"
)

type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps v into an Envelope frame.
func Encode(t EventType, v any) ([]byte, error) {
	env := Envelope{Type: t}
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		env.Payload = b
	}
	return json.Marshal(env)
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

type HostRequest struct {
	SessionID domain.SessionID `json:"sessionId" validate:"required,max=128"`
	Name      string           `json:"name" validate:"max=64"`
}

type HostAccepted struct {
	SessionID    domain.SessionID        `json:"sessionId"`
	HostSocketID domain.ConnID           `json:"hostSocketId"`
	Property     *domain.PropertySummary `json:"property,omitempty"`
}

type JoinRequest struct {
	SessionID domain.SessionID `json:"sessionId" validate:"required,max=128"`
	UserID    *string          `json:"userId"`
	Name      string           `json:"name" validate:"max=64"`
}

type JoinAccepted struct {
	SessionID    domain.SessionID        `json:"sessionId"`
	HostSocketID domain.ConnID           `json:"hostSocketId"`
	Participants []domain.Participant    `json:"participants"`
	IsRecording  bool                    `json:"isRecording"`
	Property     *domain.PropertySummary `json:"property,omitempty"`
}

// Failure is the payload of join-error, host-error and error.
type Failure struct {
	Message string `json:"message"`
}

type LeaveRequest struct {
	SessionID domain.SessionID `json:"sessionId" validate:"required"`
}

type EndRequest struct {
	SessionID domain.SessionID `json:"sessionId" validate:"required"`
	Reason    string           `json:"reason" validate:"max=256"`
}

type ParticipantGone struct {
	SocketID domain.ConnID `json:"socketId"`
	Name     string        `json:"name"`
}

type Ended struct {
	SessionID domain.SessionID `json:"sessionId"`
	Message   string           `json:"message"`
}

// ChatRequest is what a client sends; the relay fills in sender and timestamp.
type ChatRequest struct {
	SessionID domain.SessionID `json:"sessionId" validate:"required"`
	Message   string           `json:"message" validate:"required"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
}

type Recording struct {
	IsRecording bool `json:"isRecording"`
}
