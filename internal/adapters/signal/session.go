package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleHost(ctx context.Context, c *WsSignalConn, raw json.RawMessage) {
	var p protocol.HostRequest
	if !ctl.bind(c, protocol.HostError, raw, &p) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(c.id)).Str("session", string(p.SessionID)).Msg("host")
	_ = ctl.Relay.Host(ctx, c.id, p)
}

func (ctl *SignalWSController) handleJoin(ctx context.Context, c *WsSignalConn, raw json.RawMessage) {
	var p protocol.JoinRequest
	if !ctl.bind(c, protocol.JoinError, raw, &p) {
		return
	}
	if p.UserID == nil && c.userID != "" {
		uid := c.userID
		p.UserID = &uid
	}
	log.Info().Str("module", "signal").Str("sid", string(c.id)).Str("session", string(p.SessionID)).Msg("join")
	_ = ctl.Relay.Join(ctx, c.id, p)
}

// handleLeave leaves the session; the socket itself stays open.
func (ctl *SignalWSController) handleLeave(c *WsSignalConn, raw json.RawMessage) {
	var p protocol.LeaveRequest
	if !ctl.bind(c, protocol.Error, raw, &p) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(c.id)).Str("session", string(p.SessionID)).Msg("leave")
	ctl.Relay.Leave(c.id, p.SessionID)
}

func (ctl *SignalWSController) handleEnd(c *WsSignalConn, raw json.RawMessage) {
	var p protocol.EndRequest
	if !ctl.bind(c, protocol.Error, raw, &p) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(c.id)).Str("session", string(p.SessionID)).Msg("end")
	_ = ctl.Relay.End(c.id, p)
}

func (ctl *SignalWSController) handleEnvelope(c *WsSignalConn, raw json.RawMessage) {
	var env domain.SignalEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.To == "" || len(env.Signal) == 0 {
		log.Warn().Str("module", "signal").Str("sid", string(c.id)).Msg("bad signal envelope")
		return
	}
	_ = ctl.Relay.Signal(c.id, env)
}

func (ctl *SignalWSController) handleChat(c *WsSignalConn, raw json.RawMessage) {
	var p protocol.ChatRequest
	if !ctl.bind(c, protocol.Error, raw, &p) {
		return
	}
	_ = ctl.Relay.Chat(c.id, p)
}

func (ctl *SignalWSController) handleRecording(c *WsSignalConn, raw json.RawMessage) {
	var p protocol.Recording
	if err := json.Unmarshal(raw, &p); err != nil {
		ctl.sendError(c, protocol.Error, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(c.id)).Bool("recording", p.IsRecording).Msg("recording")
	_ = ctl.Relay.SetRecording(c.id, p.IsRecording)
}
