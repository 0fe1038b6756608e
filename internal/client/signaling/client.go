// Package signaling is the client side of the relay channel: one websocket
// per viewer or host, with typed inbound events.
package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait    = 5 * time.Second
	eventsBuffer = 64
)

var ErrClosed = errors.New("signaling channel closed")

type Client struct {
	conn   *websocket.Conn
	events chan Event
	logger zerolog.Logger

	wmu       sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// Dial opens the relay channel at url (ws:// or wss://).
func Dial(ctx context.Context, url string, header http.Header, logger zerolog.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	c := &Client{
		conn:   conn,
		events: make(chan Event, eventsBuffer),
		logger: logger.With().Str("module", "signaling").Logger(),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Events is closed after a final Disconnected event.
func (c *Client) Events() <-chan Event { return c.events }

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				err = ErrClosed
			default:
				c.logger.Warn().Err(err).Msg("relay read failed")
			}
			c.emitLast(err)
			return
		}
		ev, err := decodeEvent(data)
		if err != nil {
			c.logger.Warn().Err(err).Msg("bad relay frame")
			continue
		}
		if ev == nil {
			continue
		}
		select {
		case c.events <- ev:
		case <-c.done:
			c.emitLast(ErrClosed)
			return
		}
	}
}

// emitLast never blocks: a consumer that stopped reading still sees the channel close.
func (c *Client) emitLast(err error) {
	select {
	case c.events <- Disconnected{Err: err}:
	default:
	}
}

func (c *Client) send(t protocol.EventType, v any) error {
	frame, err := protocol.Encode(t, v)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("send %s: %w", t, err)
	}
	return nil
}

func (c *Client) Host(sid domain.SessionID, name string) error {
	return c.send(protocol.HostSession, protocol.HostRequest{SessionID: sid, Name: name})
}

func (c *Client) Join(sid domain.SessionID, userID *string, name string) error {
	return c.send(protocol.JoinSession, protocol.JoinRequest{SessionID: sid, UserID: userID, Name: name})
}

func (c *Client) Leave(sid domain.SessionID) error {
	return c.send(protocol.LeaveSession, protocol.LeaveRequest{SessionID: sid})
}

func (c *Client) End(sid domain.SessionID, reason string) error {
	return c.send(protocol.EndSession, protocol.EndRequest{SessionID: sid, Reason: reason})
}

func (c *Client) SendSignal(to domain.ConnID, signal json.RawMessage) error {
	return c.send(protocol.Signal, domain.SignalEnvelope{To: to, Signal: signal})
}

func (c *Client) SendChat(sid domain.SessionID, message string) error {
	return c.send(protocol.ChatMessage, protocol.ChatRequest{SessionID: sid, Message: message})
}

func (c *Client) SetRecording(on bool) error {
	return c.send(protocol.RecordingFlag, protocol.Recording{IsRecording: on})
}

func (c *Client) Ping() error {
	return c.send(protocol.Ping, nil)
}

// Close is idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.wmu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		c.wmu.Unlock()
		err = c.conn.Close()
	})
	return err
}
