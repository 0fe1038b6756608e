package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/viewing/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	var ping <-chan time.Time
	if ctl.pingPeriod > 0 {
		ticker := time.NewTicker(ctl.pingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump ctx done")
			return
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("writePump ping")
				c.Close()
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				c.Close()
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("readPump closing")
		ctl.Relay.Disconnect(c.id)
		c.Close()
		cancel()
	}()

	if ctl.pingPeriod > 0 {
		pongWait := ctl.pingPeriod * 10 / 9
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(ctx, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, c *WsSignalConn, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, protocol.Error, "bad_payload")
		return
	}

	switch env.Type {
	case protocol.HostSession:
		ctl.handleHost(ctx, c, env.Payload)
	case protocol.JoinSession:
		ctl.handleJoin(ctx, c, env.Payload)
	case protocol.LeaveSession:
		ctl.handleLeave(c, env.Payload)
	case protocol.EndSession:
		ctl.handleEnd(c, env.Payload)
	case protocol.Signal:
		ctl.handleEnvelope(c, env.Payload)
	case protocol.ChatMessage:
		ctl.handleChat(c, env.Payload)
	case protocol.RecordingFlag:
		ctl.handleRecording(c, env.Payload)
	case protocol.Ping:
		ctl.sendJSON(c, protocol.Pong, nil)
	default:
		log.Warn().Str("module", "signal").Str("type", string(env.Type)).Msg("unknown signal")
	}
}

// bind decodes and validates a payload, replying with failType on error.
func (ctl *SignalWSController) bind(c *WsSignalConn, failType protocol.EventType, raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("bad payload")
		ctl.sendError(c, failType, "bad_payload")
		return false
	}
	if err := ctl.validate.Struct(v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("invalid payload")
		ctl.sendError(c, failType, "invalid_payload")
		return false
	}
	return true
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, t protocol.EventType, msg string) {
	ctl.sendJSON(c, t, protocol.Failure{Message: msg})
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, t protocol.EventType, v any) {
	b, err := protocol.Encode(t, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
