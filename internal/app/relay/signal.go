package relay

import (
	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/protocol"
)

// Signal forwards env verbatim to env.To. From is always overwritten with the
// sender. Only host and viewer exchange envelopes: anything whose target is not
// in the sender's live session, or that does not involve the host, is dropped.
// Retries are the peers' concern.
func (r *Relay) Signal(conn domain.ConnID, env domain.SignalEnvelope) error {
	sid, ok := r.registry.SessionOf(conn)
	if !ok {
		r.logger.Debug().Str("sid", string(conn)).Msg("signal from connection outside any session dropped")
		return domain.ErrSignalRoutingMiss
	}
	a, ok := r.actorFor(sid)
	if !ok {
		return domain.ErrSignalRoutingMiss
	}
	err := domain.ErrSignalRoutingMiss
	a.do(func() {
		target, ok := r.registry.SessionOf(env.To)
		if !ok || target != sid || env.To == conn {
			return
		}
		if !r.registry.IsHost(sid, conn) && !r.registry.IsHost(sid, env.To) {
			return
		}
		env.From = conn
		r.sendTo(sid, env.To, protocol.Signal, env)
		err = nil
	})
	if err != nil {
		r.logger.Debug().Str("session", string(sid)).Str("from", string(conn)).Str("to", string(env.To)).Msg("signal dropped")
	}
	return err
}
