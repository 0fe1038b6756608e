package relay

import (
	"errors"

	"github.com/dkeye/viewing/internal/app"
	"github.com/dkeye/viewing/internal/core"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/protocol"
)

func (r *Relay) sendTo(sid domain.SessionID, conn domain.ConnID, t protocol.EventType, v any) {
	frame, err := protocol.Encode(t, v)
	if err != nil {
		r.logger.Error().Err(err).Str("type", string(t)).Msg("encode frame")
		return
	}
	r.deliver(sid, conn, frame)
}

// broadcast sends one frame to every current member of sid except skip.
// Called from the session actor, so members observe frames in mutation order.
func (r *Relay) broadcast(sid domain.SessionID, t protocol.EventType, v any, skip domain.ConnID) {
	frame, err := protocol.Encode(t, v)
	if err != nil {
		r.logger.Error().Err(err).Str("type", string(t)).Msg("encode frame")
		return
	}
	sent := 0
	for _, member := range r.registry.Members(sid) {
		if member == skip {
			continue
		}
		if r.deliver(sid, member, frame) {
			sent++
		}
	}
	r.logger.Debug().Str("session", string(sid)).Str("type", string(t)).Int("sent_to", sent).Msg("broadcast result")
}

func (r *Relay) deliver(sid domain.SessionID, conn domain.ConnID, frame core.Frame) bool {
	r.mu.RLock()
	sc, ok := r.conns[conn]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	err := sc.TrySend(frame)
	if err == nil {
		return true
	}
	if !errors.Is(err, core.ErrBackpressure) {
		r.logger.Debug().Err(err).Str("sid", string(conn)).Msg("deliver to closed connection")
		return false
	}
	switch r.policy.OnBackPressure(sid, conn) {
	case app.KickMember:
		r.logger.Warn().Str("session", string(sid)).Str("sid", string(conn)).Msg("slow member kicked")
		sc.Close()
	case app.MarkSlow:
		r.logger.Warn().Str("session", string(sid)).Str("sid", string(conn)).Msg("slow member")
	case app.DropFrame, app.NoAction:
		r.logger.Debug().Str("session", string(sid)).Str("sid", string(conn)).Msg("frame dropped")
	}
	return false
}

// fail reports err to the originating connection only.
func (r *Relay) fail(conn domain.ConnID, t protocol.EventType, err error) {
	r.logger.Info().Err(err).Str("sid", string(conn)).Str("type", string(t)).Msg("request refused")
	r.sendTo("", conn, t, protocol.Failure{Message: protocol.ErrorMessage(err)})
}
