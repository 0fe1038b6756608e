// Package relay routes signaling, chat and recording events between the host
// and viewers of a session. It never interprets signal payloads.
package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/viewing/internal/app"
	"github.com/dkeye/viewing/internal/core"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultEndReason      = "Host ended the viewing"
	OperatorEndReason     = "The viewing was closed"
	ShutdownReason        = "The viewing service is shutting down"
	DefaultHostName       = "Host"
	defaultMaxChatLength  = 2000
	defaultLookupDeadline = 3 * time.Second
)

type Options struct {
	MaxChatLength    int
	JoinRateLimit    int
	JoinRateInterval time.Duration
	LookupTimeout    time.Duration
	Lookups          core.Lookups
}

type Relay struct {
	registry *app.Registry
	policy   app.Policy
	limiter  *RateLimiter
	lookups  core.Lookups
	opts     Options

	mu     sync.RWMutex
	conns  map[domain.ConnID]core.SignalConnection
	actors map[domain.SessionID]*sessionActor

	now    func() time.Time
	logger zerolog.Logger
}

func New(registry *app.Registry, policy app.Policy, opts Options) *Relay {
	if opts.MaxChatLength <= 0 {
		opts.MaxChatLength = defaultMaxChatLength
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = defaultLookupDeadline
	}
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	return &Relay{
		registry: registry,
		policy:   policy,
		limiter:  NewRateLimiter(opts.JoinRateLimit, opts.JoinRateInterval),
		lookups:  opts.Lookups,
		opts:     opts,
		conns:    make(map[domain.ConnID]core.SignalConnection),
		actors:   make(map[domain.SessionID]*sessionActor),
		now:      time.Now,
		logger:   log.With().Str("module", "relay").Logger(),
	}
}

func (r *Relay) Registry() *app.Registry { return r.registry }

// Connect makes conn addressable by the relay.
func (r *Relay) Connect(conn domain.ConnID, sc core.SignalConnection) {
	r.mu.Lock()
	r.conns[conn] = sc
	r.mu.Unlock()
	r.logger.Info().Str("sid", string(conn)).Msg("connection registered")
}

// Disconnect is an implicit leave for every membership of conn, and ends the
// session when conn was hosting it.
func (r *Relay) Disconnect(conn domain.ConnID) {
	r.detach(conn)
	r.mu.Lock()
	delete(r.conns, conn)
	r.mu.Unlock()
	r.limiter.Forget(conn)
	r.logger.Info().Str("sid", string(conn)).Msg("connection removed")
}

// Host registers conn as the host of req.SessionID. Any other membership of
// conn is released only once the registration succeeds.
func (r *Relay) Host(ctx context.Context, conn domain.ConnID, req protocol.HostRequest) error {
	err := r.host(ctx, conn, req)
	if err != nil {
		r.fail(conn, protocol.HostError, err)
	}
	return err
}

func (r *Relay) host(ctx context.Context, conn domain.ConnID, req protocol.HostRequest) error {
	name, err := domain.NormalizeName(req.Name)
	if err != nil {
		return err
	}
	if req.Name == "" {
		name = DefaultHostName
	}
	if _, hosted := r.actorFor(req.SessionID); hosted {
		return domain.ErrSessionAlreadyHosted
	}

	property, err := r.resolveProperty(ctx, req.SessionID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	left, err := r.registry.RegisterHost(req.SessionID, conn, name, property)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	a := newSessionActor(req.SessionID, r.logger)
	r.actors[req.SessionID] = a
	r.mu.Unlock()
	go a.run()
	r.settle(conn, left)

	a.do(func() {
		r.sendTo(req.SessionID, conn, protocol.SessionHosted, protocol.HostAccepted{
			SessionID:    req.SessionID,
			HostSocketID: conn,
			Property:     property,
		})
	})
	return nil
}

// Join admits conn as a viewer. On failure only conn is told, nothing is broadcast.
func (r *Relay) Join(ctx context.Context, conn domain.ConnID, req protocol.JoinRequest) error {
	err := r.join(ctx, conn, req)
	if err != nil {
		r.fail(conn, protocol.JoinError, err)
	}
	return err
}

func (r *Relay) join(ctx context.Context, conn domain.ConnID, req protocol.JoinRequest) error {
	if !r.limiter.Allow(conn) {
		return domain.ErrRateLimited
	}
	name, err := domain.NormalizeName(req.Name)
	if err != nil {
		return err
	}
	userID := req.UserID
	if userID != nil && *userID == "" {
		userID = nil
	}
	if userID != nil {
		name = r.resolveName(ctx, *userID, name)
	}

	a, ok := r.actorFor(req.SessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	var (
		joinErr error
		left    *app.Departure
	)
	ran := a.do(func() {
		res, err := r.registry.Join(req.SessionID, conn, userID, name)
		if err != nil {
			joinErr = err
			return
		}
		left = res.Left
		r.sendTo(req.SessionID, conn, protocol.SessionJoined, protocol.JoinAccepted{
			SessionID:    req.SessionID,
			HostSocketID: res.Host,
			Participants: res.Participants,
			IsRecording:  res.Recording,
			Property:     res.Property,
		})
		r.broadcast(req.SessionID, protocol.ParticipantJoined, res.Self, conn)
	})
	if !ran {
		return domain.ErrSessionNotFound
	}
	if joinErr != nil {
		return joinErr
	}
	r.settle(conn, left)
	return nil
}

// Leave removes conn from sid. Leaving twice is a no-op.
func (r *Relay) Leave(conn domain.ConnID, sid domain.SessionID) {
	a, ok := r.actorFor(sid)
	if !ok {
		return
	}
	a.do(func() { r.leaveInActor(a, sid, conn, false) })
}

// End lets the host terminate its session.
func (r *Relay) End(conn domain.ConnID, req protocol.EndRequest) error {
	reason := req.Reason
	if reason == "" {
		reason = DefaultEndReason
	}
	err := domain.ErrSessionNotFound
	if a, ok := r.actorFor(req.SessionID); ok {
		a.do(func() {
			if !r.registry.IsHost(req.SessionID, conn) {
				err = domain.ErrNotHost
				return
			}
			if ended, ok := r.registry.EndSession(req.SessionID, reason); ok {
				r.finish(a, ended, "")
				err = nil
			}
		})
	}
	if err != nil {
		r.fail(conn, protocol.Error, err)
	}
	return err
}

// EndByOperator ends a session from outside the signaling channel.
func (r *Relay) EndByOperator(sid domain.SessionID, reason string) bool {
	if reason == "" {
		reason = OperatorEndReason
	}
	a, ok := r.actorFor(sid)
	if !ok {
		return false
	}
	ended := false
	a.do(func() {
		var e app.Ended
		if e, ended = r.registry.EndSession(sid, reason); ended {
			r.finish(a, e, "")
		}
	})
	return ended
}

// Shutdown ends every live session.
func (r *Relay) Shutdown() {
	r.mu.RLock()
	ids := make([]domain.SessionID, 0, len(r.actors))
	for sid := range r.actors {
		ids = append(ids, sid)
	}
	r.mu.RUnlock()
	for _, sid := range ids {
		r.EndByOperator(sid, ShutdownReason)
	}
	r.logger.Info().Int("sessions", len(ids)).Msg("relay shut down")
}

// detach removes the membership of a disconnected conn. Runs outside any actor.
func (r *Relay) detach(conn domain.ConnID) {
	sid, ok := r.registry.SessionOf(conn)
	if !ok {
		return
	}
	a, ok := r.actorFor(sid)
	if !ok {
		return
	}
	a.do(func() { r.leaveInActor(a, sid, conn, true) })
}

// settle tells the session conn moved away from. Runs outside any actor.
func (r *Relay) settle(conn domain.ConnID, left *app.Departure) {
	if left == nil {
		return
	}
	a, ok := r.actorFor(left.SessionID)
	if !ok {
		return
	}
	a.do(func() {
		if left.Ended != nil {
			r.finish(a, *left.Ended, conn)
			return
		}
		p := left.Participant
		r.broadcast(left.SessionID, protocol.ParticipantLeft, protocol.ParticipantGone{SocketID: p.ConnID, Name: p.Name}, "")
	})
}

func (r *Relay) leaveInActor(a *sessionActor, sid domain.SessionID, conn domain.ConnID, disconnected bool) {
	if r.registry.IsHost(sid, conn) {
		var ended app.Ended
		var ok bool
		if disconnected {
			ended, ok = r.registry.OnHostDisconnect(conn)
		} else {
			ended, ok = r.registry.EndSession(sid, app.HostLeftReason)
		}
		if ok {
			r.finish(a, ended, "")
		}
		return
	}
	p, removed := r.registry.Leave(sid, conn)
	if !removed {
		return
	}
	r.broadcast(sid, protocol.ParticipantLeft, protocol.ParticipantGone{SocketID: p.ConnID, Name: p.Name}, "")
}

// finish notifies every member of an ended session exactly once, except skip,
// and stops its actor.
func (r *Relay) finish(a *sessionActor, ended app.Ended, skip domain.ConnID) {
	frame, err := protocol.Encode(protocol.SessionEnded, protocol.Ended{
		SessionID: ended.SessionID,
		Message:   ended.Reason,
	})
	if err == nil {
		for _, member := range ended.Members() {
			if member != skip {
				r.deliver(ended.SessionID, member, frame)
			}
		}
	}
	r.mu.Lock()
	if r.actors[ended.SessionID] == a {
		delete(r.actors, ended.SessionID)
	}
	r.mu.Unlock()
	a.stop()
}

func (r *Relay) actorFor(sid domain.SessionID) (*sessionActor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[sid]
	return a, ok
}

func (r *Relay) resolveProperty(ctx context.Context, sid domain.SessionID) (*domain.PropertySummary, error) {
	if r.lookups.Sessions == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.LookupTimeout)
	defer cancel()
	meta, err := r.lookups.Sessions.SessionMetadata(ctx, sid)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("session", string(sid)).Msg("session metadata lookup failed")
		return nil, nil
	}
	if r.lookups.Properties == nil || meta.PropertyID == "" {
		return nil, nil
	}
	prop, err := r.lookups.Properties.Property(ctx, meta.PropertyID)
	if err != nil {
		r.logger.Warn().Err(err).Str("property", meta.PropertyID).Msg("property lookup failed")
		return nil, nil
	}
	return &prop, nil
}

func (r *Relay) resolveName(ctx context.Context, userID, fallback string) string {
	if r.lookups.Profiles == nil {
		return fallback
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.LookupTimeout)
	defer cancel()
	profile, err := r.lookups.Profiles.Profile(ctx, userID)
	if err != nil {
		r.logger.Warn().Err(err).Str("user", userID).Msg("profile lookup failed")
		return fallback
	}
	if profile.DisplayName == "" {
		return fallback
	}
	return profile.DisplayName
}
