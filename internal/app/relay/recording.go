package relay

import (
	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/protocol"
)

// SetRecording accepts the flag only from the session host and rebroadcasts it.
// Viewers joining later read the flag from their join response.
func (r *Relay) SetRecording(conn domain.ConnID, on bool) error {
	sid, ok := r.registry.SessionOf(conn)
	if !ok {
		r.fail(conn, protocol.Error, domain.ErrNotMember)
		return domain.ErrNotMember
	}
	a, ok := r.actorFor(sid)
	if !ok {
		return domain.ErrSessionNotFound
	}
	var err error
	a.do(func() {
		if err = r.registry.SetRecording(sid, conn, on); err != nil {
			return
		}
		r.broadcast(sid, protocol.RecordingFlag, protocol.Recording{IsRecording: on}, "")
	})
	if err != nil {
		r.fail(conn, protocol.Error, err)
	}
	return err
}
