package rtc

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

// PeerFailure is a failed connection to one viewer.
type PeerFailure struct {
	Remote domain.ConnID
	Err    error
}

type ManagerConfig struct {
	API           *webrtc.API
	Configuration webrtc.Configuration
	Tracks        func() []webrtc.TrackLocal
	Send          SendFunc
	// Surface is optional; it receives whatever the viewers send back.
	Surface RemoteSurface
	Logger  zerolog.Logger
}

// Manager keeps one initiating peer per viewer on the host side.
type Manager struct {
	cfg    ManagerConfig
	logger zerolog.Logger

	mu       sync.RWMutex
	peers    map[domain.ConnID]*Peer
	failures chan PeerFailure
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		logger:   cfg.Logger.With().Str("module", "rtc.manager").Logger(),
		peers:    make(map[domain.ConnID]*Peer),
		failures: make(chan PeerFailure, 16),
	}
}

func (m *Manager) Failures() <-chan PeerFailure { return m.failures }

// Open creates the peer for remote and starts its offer in the background,
// so the caller never waits on ICE gathering. A failed offer is reported on
// Failures. An existing peer for the same viewer is replaced.
func (m *Manager) Open(remote domain.ConnID) (*Peer, error) {
	var tracks []webrtc.TrackLocal
	if m.cfg.Tracks != nil {
		tracks = m.cfg.Tracks()
	}
	p, err := NewPeer(PeerConfig{
		API:           m.cfg.API,
		Configuration: m.cfg.Configuration,
		Role:          Initiator,
		Remote:        remote,
		Tracks:        tracks,
		Send:          m.cfg.Send,
		Surface:       m.cfg.Surface,
		Logger:        m.cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	old, ok := m.peers[remote]
	m.peers[remote] = p
	m.mu.Unlock()
	if ok {
		m.logger.Info().Str("remote", string(remote)).Msg("replacing existing peer")
		_ = old.Close()
	}

	go m.watch(p)
	go m.offer(p, len(tracks))
	return p, nil
}

func (m *Manager) offer(p *Peer, tracks int) {
	if err := p.Offer(); err != nil {
		if p.State() == Closed {
			m.logger.Debug().Err(err).Str("remote", string(p.Remote())).Msg("offer abandoned, peer closed")
			return
		}
		p.fail(fmt.Errorf("%w: offer: %v", domain.ErrPeerConnectionFailure, err))
		return
	}
	m.logger.Info().Str("remote", string(p.Remote())).Int("tracks", tracks).Msg("offer sent")
}

func (m *Manager) watch(p *Peer) {
	var err error
	select {
	case err = <-p.Failures():
	case <-p.ctx.Done():
		select {
		case err = <-p.Failures():
		default:
			return
		}
	}
	m.mu.Lock()
	if m.peers[p.Remote()] == p {
		delete(m.peers, p.Remote())
	}
	m.mu.Unlock()
	select {
	case m.failures <- PeerFailure{Remote: p.Remote(), Err: err}:
	default:
		m.logger.Warn().Str("remote", string(p.Remote())).Msg("failure dropped")
	}
}

// Route hands a signal to the peer bound to from. Unknown senders are dropped.
func (m *Manager) Route(from domain.ConnID, raw json.RawMessage) error {
	m.mu.RLock()
	p, ok := m.peers[from]
	m.mu.RUnlock()
	if !ok {
		m.logger.Debug().Str("from", string(from)).Msg("signal for unknown peer dropped")
		return nil
	}
	return p.HandleSignal(from, raw)
}

func (m *Manager) Close(remote domain.ConnID) {
	m.mu.Lock()
	p, ok := m.peers[remote]
	delete(m.peers, remote)
	m.mu.Unlock()
	if ok {
		_ = p.Close()
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	peers := m.peers
	m.peers = make(map[domain.ConnID]*Peer)
	m.mu.Unlock()
	for _, p := range peers {
		_ = p.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.peers)
}
