package rtc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

type State int32

const (
	Idle State = iota
	Negotiating
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Negotiating:
		return "negotiating"
	case Connected:
		return "connected"
	default:
		return "closed"
	}
}

type Role int

const (
	// Responder answers offers. Viewers are always responders.
	Responder Role = iota
	// Initiator creates the offer. Only the host initiates.
	Initiator
)

// SendFunc delivers an outgoing signal to the remote connection through the relay.
type SendFunc func(to domain.ConnID, signal json.RawMessage) error

type PeerConfig struct {
	API           *webrtc.API
	Configuration webrtc.Configuration
	Role          Role
	Remote        domain.ConnID
	Tracks        []webrtc.TrackLocal
	Send          SendFunc
	Surface       RemoteSurface
	Logger        zerolog.Logger
}

var errPeerClosed = errors.New("peer closed")

// Peer is one WebRTC connection to a single remote party with trickle ICE
// disabled: every local description goes out once gathering completes.
type Peer struct {
	role    Role
	remote  domain.ConnID
	send    SendFunc
	surface RemoteSurface
	logger  zerolog.Logger

	pc    *webrtc.PeerConnection
	state atomic.Int32

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	failures chan error
	once     sync.Once
}

func NewPeer(cfg PeerConfig) (*Peer, error) {
	api := cfg.API
	if api == nil {
		var err error
		if api, err = NewAPI(nil); err != nil {
			return nil, err
		}
	}
	pc, err := api.NewPeerConnection(cfg.Configuration)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Peer{
		role:     cfg.Role,
		remote:   cfg.Remote,
		send:     cfg.Send,
		surface:  cfg.Surface,
		logger:   cfg.Logger.With().Str("module", "rtc").Str("remote", string(cfg.Remote)).Logger(),
		pc:       pc,
		ctx:      ctx,
		cancel:   cancel,
		failures: make(chan error, 1),
	}
	if err := p.addTracks(cfg.Tracks); err != nil {
		_ = p.Close()
		return nil, err
	}
	p.wire()
	return p, nil
}

func (p *Peer) addTracks(tracks []webrtc.TrackLocal) error {
	have := map[webrtc.RTPCodecType]bool{}
	for _, t := range tracks {
		sender, err := p.pc.AddTrack(t)
		if err != nil {
			return fmt.Errorf("add %s track: %w", t.Kind(), err)
		}
		have[t.Kind()] = true
		go p.drainRTCP(sender)
	}
	if p.role != Initiator {
		return nil
	}
	// The offer always carries both kinds so the viewer's answer can send whatever it has.
	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeAudio, webrtc.RTPCodecTypeVideo} {
		if have[kind] {
			continue
		}
		if _, err := p.pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			return fmt.Errorf("add %s transceiver: %w", kind, err)
		}
	}
	return nil
}

func (p *Peer) drainRTCP(sender *webrtc.RTPSender) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := sender.Read(buf); err != nil {
			return
		}
	}
}

func (p *Peer) wire() {
	p.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		p.logger.Info().Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed {
			p.fail(fmt.Errorf("%w: connection state %s", domain.ErrPeerConnectionFailure, s))
		}
	})

	p.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		p.logger.Info().
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		if !p.transition(Negotiating, Connected) && p.State() != Connected {
			return
		}
		sink := sinkFromTrack(track)
		if p.surface != nil {
			p.surface.Attach(sink)
		}
		go sink.Run(p.ctx, p.logger.With().Str("kind", track.Kind().String()).Logger())
	})
}

func (p *Peer) State() State { return State(p.state.Load()) }

func (p *Peer) Remote() domain.ConnID { return p.remote }

// Failures reports at most one PeerConnectionFailure.
func (p *Peer) Failures() <-chan error { return p.failures }

func (p *Peer) transition(from, to State) bool {
	return p.state.CompareAndSwap(int32(from), int32(to))
}

// Offer starts negotiation from the initiating side.
func (p *Peer) Offer() error {
	if p.role != Initiator {
		return fmt.Errorf("offer from a responder peer")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.transition(Idle, Negotiating) {
		return fmt.Errorf("offer in state %s", p.State())
	}
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	return p.sendLocal(offer)
}

// HandleSignal applies a remote signal. Signals from anyone but the bound
// remote, or after Close, are dropped without error.
func (p *Peer) HandleSignal(from domain.ConnID, raw json.RawMessage) error {
	if from != p.remote {
		p.logger.Debug().Str("from", string(from)).Msg("signal from unexpected peer dropped")
		return nil
	}
	if p.State() == Closed {
		p.logger.Debug().Msg("signal after close dropped")
		return nil
	}
	sig, err := ParseSignal(raw)
	if err != nil {
		p.logger.Warn().Err(err).Msg("rejecting signal")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.State() == Closed {
		return nil
	}
	switch s := sig.(type) {
	case SessionDescription:
		return p.applyDescription(s.SessionDescription)
	case Candidate:
		if err := p.pc.AddICECandidate(s.ICECandidateInit); err != nil {
			return fmt.Errorf("add ice candidate: %w", err)
		}
	}
	return nil
}

func (p *Peer) applyDescription(d webrtc.SessionDescription) error {
	switch {
	case d.Type == webrtc.SDPTypeOffer && p.role == Responder:
		p.transition(Idle, Negotiating)
		if err := p.pc.SetRemoteDescription(d); err != nil {
			return fmt.Errorf("set remote offer: %w", err)
		}
		answer, err := p.pc.CreateAnswer(nil)
		if err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
		return p.sendLocal(answer)
	case d.Type == webrtc.SDPTypeAnswer && p.role == Initiator:
		if err := p.pc.SetRemoteDescription(d); err != nil {
			return fmt.Errorf("set remote answer: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s for this role", ErrMalformedSignal, d.Type)
	}
}

// sendLocal sets d locally, waits for ICE gathering and sends the complete description.
func (p *Peer) sendLocal(d webrtc.SessionDescription) error {
	gatherComplete := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(d); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}
	select {
	case <-gatherComplete:
	case <-p.ctx.Done():
		return errPeerClosed
	}
	raw, err := encodeDescription(p.pc.LocalDescription())
	if err != nil {
		return err
	}
	if p.send == nil {
		return nil
	}
	return p.send(p.remote, raw)
}

func (p *Peer) fail(err error) {
	select {
	case p.failures <- err:
	default:
	}
	p.logger.Warn().Err(err).Msg("peer failed")
	go func() { _ = p.Close() }()
}

// Close releases the native connection exactly once. Later calls are no-ops.
func (p *Peer) Close() error {
	var err error
	p.once.Do(func() {
		p.state.Store(int32(Closed))
		p.cancel()
		if err = p.pc.Close(); err != nil {
			p.logger.Error().Err(err).Msg("close error")
		} else {
			p.logger.Info().Msg("closed")
		}
	})
	return err
}
