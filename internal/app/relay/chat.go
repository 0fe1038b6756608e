package relay

import (
	"strings"
	"unicode/utf8"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/protocol"
	"github.com/oklog/ulid/v2"
)

// Chat stamps a message with the sender known to the registry and the relay
// arrival time, then sends it to every member including the sender.
func (r *Relay) Chat(conn domain.ConnID, req protocol.ChatRequest) error {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) > r.opts.MaxChatLength {
		r.fail(conn, protocol.Error, domain.ErrMessageTooLong)
		return domain.ErrMessageTooLong
	}
	sid, ok := r.registry.SessionOf(conn)
	if !ok || sid != req.SessionID {
		r.fail(conn, protocol.Error, domain.ErrNotMember)
		return domain.ErrNotMember
	}
	a, ok := r.actorFor(sid)
	if !ok {
		return domain.ErrSessionNotFound
	}
	var err error
	a.do(func() {
		sender, serr := r.registry.Sender(sid, conn)
		if serr != nil {
			err = serr
			return
		}
		r.broadcast(sid, protocol.ChatMessage, domain.ChatMessage{
			ID:        ulid.Make().String(),
			SessionID: sid,
			Message:   text,
			Sender:    sender,
			Timestamp: r.now().UTC(),
		}, "")
	})
	return err
}
