package domain

import (
	"encoding/json"
	"time"
)

// Sender identifies the author of a chat message as the relay knows it.
type Sender struct {
	ID     *string `json:"id"`
	Name   string  `json:"name"`
	IsHost bool    `json:"isHost"`
}

// ChatMessage is immutable once stamped by the relay.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID SessionID `json:"sessionId"`
	Message   string    `json:"message"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// SignalEnvelope carries an opaque WebRTC blob between two connections of one session.
// The relay never looks inside Signal.
type SignalEnvelope struct {
	From   ConnID          `json:"from"`
	To     ConnID          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}
