// Package viewer sequences one viewer through a viewing: media, join dialog,
// join, peer connection, then chat and recording until the session ends.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dkeye/viewing/internal/client/media"
	"github.com/dkeye/viewing/internal/client/signaling"
	"github.com/dkeye/viewing/internal/client/ui"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/rs/zerolog"
)

type State int32

const (
	Acquiring State = iota
	AwaitingConfirm
	Joining
	Active
	Ended
)

func (s State) String() string {
	return [...]string{"acquiring", "awaiting-confirm", "joining", "active", "ended"}[s]
}

var (
	ErrJoinRejected = errors.New("join rejected")
	ErrDisconnected = errors.New("relay connection lost")
	ErrCancelled    = errors.New("join cancelled")
)

const (
	peerFailedMessage   = "The video connection to the host failed. Leave and rejoin to try again."
	disconnectedMessage = "Lost connection to the viewing service."
)

type Config struct {
	SessionID domain.SessionID
	UserID    *string
	Name      string
	Channel   Channel
	Media     Acquirer
	NewPeer   PeerFactory
	UI        ui.UI
	Logger    zerolog.Logger
}

type Controller struct {
	cfg    Config
	logger zerolog.Logger
	state  atomic.Int32

	acq    *media.Acquisition
	peer   Peer
	joined bool

	mu      sync.RWMutex
	host    domain.ConnID
	roster  []domain.Participant
	history []domain.ChatMessage

	leave     chan struct{}
	leaveOnce sync.Once
	teardown  sync.Once
}

func New(cfg Config) *Controller {
	return &Controller{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("module", "viewer").Str("session", string(cfg.SessionID)).Logger(),
		leave:  make(chan struct{}),
	}
}

func (c *Controller) State() State { return State(c.state.Load()) }

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
	c.logger.Debug().Str("state", s.String()).Msg("viewer state")
}

// Leave asks Run to leave the session. Safe to call any number of times from any goroutine.
func (c *Controller) Leave() {
	c.leaveOnce.Do(func() { close(c.leave) })
}

func (c *Controller) SendChat(message string) error {
	if c.State() != Active {
		return domain.ErrNotMember
	}
	return c.cfg.Channel.SendChat(c.cfg.SessionID, message)
}

// ChatHistory is kept for the lifetime of the session only.
func (c *Controller) ChatHistory() []domain.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.history)
}

func (c *Controller) Roster() (domain.ConnID, []domain.Participant) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host, slices.Clone(c.roster)
}

func (c *Controller) Acquisition() *media.Acquisition { return c.acq }

// Run drives the viewer until the session ends, the viewer leaves, the
// relay drops or ctx is cancelled. Every exit path tears down once.
func (c *Controller) Run(ctx context.Context) error {
	defer c.close()

	c.setState(Acquiring)
	acq, err := c.cfg.Media.Acquire(ctx)
	c.acq = acq
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var ae *media.AcquisitionError
		if errors.As(err, &ae) {
			c.cfg.UI.Toast(ui.Warning, ae.Kind.Message())
		} else {
			c.cfg.UI.Toast(ui.Warning, media.Unknown.Message())
		}
	}

	c.setState(AwaitingConfirm)
	var capability media.Capability
	if acq != nil {
		capability = acq.Capability()
	}
	name, ok := c.cfg.UI.ConfirmJoin(ctx, capability, c.cfg.Name)
	if !ok {
		c.setState(Ended)
		c.cfg.UI.NavigateAway()
		return ErrCancelled
	}

	c.setState(Joining)
	if err := c.cfg.Channel.Join(c.cfg.SessionID, c.cfg.UserID, name); err != nil {
		c.setState(Ended)
		c.cfg.UI.Toast(ui.Error, disconnectedMessage)
		c.cfg.UI.NavigateAway()
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	if err := c.awaitJoin(ctx); err != nil {
		return err
	}
	return c.loop(ctx)
}

func (c *Controller) awaitJoin(ctx context.Context) error {
	events := c.cfg.Channel.Events()
	for {
		select {
		case <-ctx.Done():
			c.setState(Ended)
			return ctx.Err()
		case <-c.leave:
			c.setState(Ended)
			c.cfg.UI.NavigateAway()
			return nil
		case ev, ok := <-events:
			if !ok {
				return c.disconnected(nil)
			}
			switch e := ev.(type) {
			case signaling.JoinAccepted:
				c.admitted(e)
				return nil
			case signaling.JoinRejected:
				c.setState(Ended)
				c.cfg.UI.Toast(ui.Error, e.Message)
				c.close()
				c.cfg.UI.NavigateAway()
				return fmt.Errorf("%w: %s", ErrJoinRejected, e.Message)
			case signaling.Disconnected:
				return c.disconnected(e.Err)
			default:
				c.logger.Debug().Type("event", ev).Msg("event before join ignored")
			}
		}
	}
}

func (c *Controller) admitted(e signaling.JoinAccepted) {
	c.joined = true
	c.mu.Lock()
	c.host = e.HostSocketID
	c.roster = slices.Clone(e.Participants)
	c.mu.Unlock()
	c.cfg.UI.ShowRoster(e.HostSocketID, e.Participants)
	c.cfg.UI.ShowRecording(e.IsRecording)

	peer, err := c.cfg.NewPeer(e.HostSocketID, c.acq, c.cfg.Channel.SendSignal)
	if err != nil {
		c.logger.Warn().Err(err).Msg("peer construction failed")
		c.cfg.UI.Toast(ui.Warning, peerFailedMessage)
	} else {
		c.peer = peer
	}
	c.setState(Active)
	c.logger.Info().Str("host", string(e.HostSocketID)).Int("participants", len(e.Participants)).Msg("joined")
}

func (c *Controller) loop(ctx context.Context) error {
	events := c.cfg.Channel.Events()
	for {
		var failures <-chan error
		if c.peer != nil {
			failures = c.peer.Failures()
		}
		select {
		case <-ctx.Done():
			c.setState(Ended)
			return ctx.Err()
		case <-c.leave:
			c.setState(Ended)
			c.close()
			c.cfg.UI.NavigateAway()
			return nil
		case err := <-failures:
			c.logger.Warn().Err(err).Msg("peer connection failed")
			c.cfg.UI.Toast(ui.Warning, peerFailedMessage)
			_ = c.peer.Close()
			c.peer = nil
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

// handle applies one event; done reports that the session is over for this viewer.
func (c *Controller) handle(ev signaling.Event) (bool, error) {
	switch e := ev.(type) {
	case signaling.Signal:
		if c.peer == nil {
			c.logger.Debug().Msg("signal without peer dropped")
			return false, nil
		}
		if err := c.peer.HandleSignal(e.From, e.Payload); err != nil {
			c.logger.Warn().Err(err).Msg("signal rejected")
		}
	case signaling.RosterChanged:
		c.mu.Lock()
		if e.Joined != nil {
			c.roster = append(c.roster, *e.Joined)
		}
		if e.Left != nil {
			c.roster = slices.DeleteFunc(c.roster, func(p domain.Participant) bool { return p.ConnID == e.Left.SocketID })
		}
		host, roster := c.host, slices.Clone(c.roster)
		c.mu.Unlock()
		c.cfg.UI.ShowRoster(host, roster)
	case signaling.Chat:
		c.mu.Lock()
		c.history = append(c.history, e.ChatMessage)
		c.mu.Unlock()
		c.cfg.UI.ShowChat(e.ChatMessage)
	case signaling.RecordingChanged:
		c.cfg.UI.ShowRecording(e.IsRecording)
	case signaling.SessionEnded:
		c.setState(Ended)
		c.joined = false
		c.close()
		c.cfg.UI.ShowEnded(e.Message)
		c.cfg.UI.NavigateAway()
		c.logger.Info().Str("reason", e.Message).Msg("session ended")
		return true, nil
	case signaling.Failed:
		c.cfg.UI.Toast(ui.Error, e.Message)
	case signaling.Disconnected:
		return true, c.disconnected(e.Err)
	}
	return false, nil
}

func (c *Controller) disconnected(err error) error {
	c.setState(Ended)
	c.joined = false
	c.close()
	c.cfg.UI.Toast(ui.Error, disconnectedMessage)
	c.cfg.UI.NavigateAway()
	if err == nil {
		return ErrDisconnected
	}
	return fmt.Errorf("%w: %v", ErrDisconnected, err)
}

// close releases the peer, the media and the relay channel exactly once.
func (c *Controller) close() {
	c.teardown.Do(func() {
		if c.peer != nil {
			_ = c.peer.Close()
		}
		c.acq.Release()
		if c.joined {
			if err := c.cfg.Channel.Leave(c.cfg.SessionID); err != nil {
				c.logger.Debug().Err(err).Msg("leave on teardown")
			}
			c.joined = false
		}
		if err := c.cfg.Channel.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("channel close")
		}
		c.logger.Info().Msg("viewer torn down")
	})
}
