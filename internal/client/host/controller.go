// Package host runs the hosting side of a viewing: it opens the session,
// offers a peer connection to every viewer and drives chat and recording.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dkeye/viewing/internal/client/media"
	"github.com/dkeye/viewing/internal/client/rtc"
	"github.com/dkeye/viewing/internal/client/signaling"
	"github.com/dkeye/viewing/internal/client/ui"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/rs/zerolog"
)

type Channel interface {
	Host(sid domain.SessionID, name string) error
	End(sid domain.SessionID, reason string) error
	SendSignal(to domain.ConnID, signal json.RawMessage) error
	SendChat(sid domain.SessionID, message string) error
	SetRecording(on bool) error
	Events() <-chan signaling.Event
	Close() error
}

type Acquirer interface {
	Acquire(ctx context.Context) (*media.Acquisition, error)
}

// Peers is the set of initiating peers, one per viewer.
type Peers interface {
	Open(remote domain.ConnID) (*rtc.Peer, error)
	Route(from domain.ConnID, raw json.RawMessage) error
	Close(remote domain.ConnID)
	CloseAll()
	Failures() <-chan rtc.PeerFailure
}

type PeersFactory func(acq *media.Acquisition, send rtc.SendFunc) Peers

// RTCPeersFactory builds a pion-backed rtc.Manager sending the acquired tracks.
func RTCPeersFactory(cfg rtc.ManagerConfig) PeersFactory {
	return func(acq *media.Acquisition, send rtc.SendFunc) Peers {
		c := cfg
		c.Tracks = acq.LocalTracks
		c.Send = send
		return rtc.NewManager(c)
	}
}

var (
	ErrHostRejected = errors.New("host rejected")
	ErrDisconnected = errors.New("relay connection lost")
)

type Config struct {
	SessionID domain.SessionID
	Name      string
	Channel   Channel
	Media     Acquirer
	NewPeers  PeersFactory
	UI        ui.UI
	Logger    zerolog.Logger
}

type Controller struct {
	cfg     Config
	logger  zerolog.Logger
	hosting atomic.Bool

	acq   *media.Acquisition
	peers Peers

	mu      sync.RWMutex
	self    domain.ConnID
	roster  []domain.Participant
	history []domain.ChatMessage

	end      chan string
	endOnce  sync.Once
	teardown sync.Once
}

func New(cfg Config) *Controller {
	return &Controller{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("module", "host").Str("session", string(cfg.SessionID)).Logger(),
		end:    make(chan string, 1),
	}
}

func (c *Controller) Hosting() bool { return c.hosting.Load() }

// End asks Run to end the session for everyone. Only the first reason counts.
func (c *Controller) End(reason string) {
	c.endOnce.Do(func() { c.end <- reason })
}

func (c *Controller) SetRecording(on bool) error {
	if !c.Hosting() {
		return domain.ErrNotHost
	}
	return c.cfg.Channel.SetRecording(on)
}

func (c *Controller) SendChat(message string) error {
	if !c.Hosting() {
		return domain.ErrNotHost
	}
	return c.cfg.Channel.SendChat(c.cfg.SessionID, message)
}

func (c *Controller) Roster() []domain.Participant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.roster)
}

func (c *Controller) ChatHistory() []domain.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.history)
}

func (c *Controller) Run(ctx context.Context) error {
	defer c.close("")

	acq, err := c.cfg.Media.Acquire(ctx)
	c.acq = acq
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var ae *media.AcquisitionError
		if errors.As(err, &ae) {
			c.cfg.UI.Toast(ui.Error, ae.Kind.Message())
		} else {
			c.cfg.UI.Toast(ui.Error, media.Unknown.Message())
		}
	}
	c.peers = c.cfg.NewPeers(acq, c.cfg.Channel.SendSignal)

	if err := c.cfg.Channel.Host(c.cfg.SessionID, c.cfg.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	events := c.cfg.Channel.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case reason := <-c.end:
			c.close(reason)
			c.cfg.UI.NavigateAway()
			return nil
		case f := <-c.peers.Failures():
			c.logger.Warn().Err(f.Err).Str("remote", string(f.Remote)).Msg("viewer connection failed")
			c.cfg.UI.Toast(ui.Warning, fmt.Sprintf("Video connection to %s failed", c.nameOf(f.Remote)))
		case ev, ok := <-events:
			if !ok {
				return c.disconnected(nil)
			}
			if done, err := c.handle(ev); done {
				return err
			}
		}
	}
}

func (c *Controller) handle(ev signaling.Event) (bool, error) {
	switch e := ev.(type) {
	case signaling.Hosted:
		c.hosting.Store(true)
		c.mu.Lock()
		c.self = e.HostSocketID
		c.mu.Unlock()
		c.cfg.UI.Toast(ui.Info, fmt.Sprintf("Hosting viewing %s", e.SessionID))
		c.cfg.UI.ShowRoster(e.HostSocketID, nil)
	case signaling.HostRejected:
		c.cfg.UI.Toast(ui.Error, e.Message)
		c.close("")
		c.cfg.UI.NavigateAway()
		return true, fmt.Errorf("%w: %s", ErrHostRejected, e.Message)
	case signaling.RosterChanged:
		c.rosterChanged(e)
	case signaling.Signal:
		if err := c.peers.Route(e.From, e.Payload); err != nil {
			c.logger.Warn().Err(err).Str("from", string(e.From)).Msg("signal rejected")
		}
	case signaling.Chat:
		c.mu.Lock()
		c.history = append(c.history, e.ChatMessage)
		c.mu.Unlock()
		c.cfg.UI.ShowChat(e.ChatMessage)
	case signaling.RecordingChanged:
		c.cfg.UI.ShowRecording(e.IsRecording)
	case signaling.SessionEnded:
		c.hosting.Store(false)
		c.close("")
		c.cfg.UI.ShowEnded(e.Message)
		c.cfg.UI.NavigateAway()
		return true, nil
	case signaling.Failed:
		c.cfg.UI.Toast(ui.Error, e.Message)
	case signaling.Disconnected:
		return true, c.disconnected(e.Err)
	}
	return false, nil
}

func (c *Controller) rosterChanged(e signaling.RosterChanged) {
	c.mu.Lock()
	if e.Joined != nil {
		c.roster = append(c.roster, *e.Joined)
	}
	if e.Left != nil {
		c.roster = slices.DeleteFunc(c.roster, func(p domain.Participant) bool { return p.ConnID == e.Left.SocketID })
	}
	self, roster := c.self, slices.Clone(c.roster)
	c.mu.Unlock()
	c.cfg.UI.ShowRoster(self, roster)

	switch {
	case e.Joined != nil:
		if _, err := c.peers.Open(e.Joined.ConnID); err != nil {
			c.logger.Warn().Err(err).Str("remote", string(e.Joined.ConnID)).Msg("offer failed")
			c.cfg.UI.Toast(ui.Warning, fmt.Sprintf("Could not connect video to %s", e.Joined.Name))
		}
	case e.Left != nil:
		c.peers.Close(e.Left.SocketID)
	}
}

func (c *Controller) nameOf(conn domain.ConnID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.roster {
		if p.ConnID == conn {
			return p.Name
		}
	}
	return string(conn)
}

func (c *Controller) disconnected(err error) error {
	c.hosting.Store(false)
	c.close("")
	c.cfg.UI.Toast(ui.Error, "Lost connection to the viewing service.")
	c.cfg.UI.NavigateAway()
	if err == nil {
		return ErrDisconnected
	}
	return fmt.Errorf("%w: %v", ErrDisconnected, err)
}

// close ends the session if still hosting, then releases peers, media and the channel once.
func (c *Controller) close(reason string) {
	c.teardown.Do(func() {
		if c.peers != nil {
			c.peers.CloseAll()
		}
		c.acq.Release()
		if c.hosting.Swap(false) {
			if err := c.cfg.Channel.End(c.cfg.SessionID, reason); err != nil {
				c.logger.Debug().Err(err).Msg("end on teardown")
			}
		}
		if err := c.cfg.Channel.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("channel close")
		}
		c.logger.Info().Msg("host torn down")
	})
}
