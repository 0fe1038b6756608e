package app

import (
	"slices"
	"sync"
	"time"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const HostLeftReason = "The host has left the viewing"

// JoinResult is the roster snapshot handed to a joining viewer.
// Participants excludes the host and the joiner itself.
type JoinResult struct {
	Self         domain.Participant
	Host         domain.ConnID
	Participants []domain.Participant
	Recording    bool
	Property     *domain.PropertySummary
	Left         *Departure
}

// Departure is the membership a connection gave up by moving to another
// session. Exactly one of Participant and Ended is meaningful.
type Departure struct {
	SessionID   domain.SessionID
	Participant domain.Participant
	Ended       *Ended
}

// Ended describes a session that was just removed, with everyone to notify.
type Ended struct {
	SessionID    domain.SessionID
	Reason       string
	Host         domain.ConnID
	Participants []domain.Participant
}

// Members returns the host followed by the participants.
func (e Ended) Members() []domain.ConnID {
	out := make([]domain.ConnID, 0, len(e.Participants)+1)
	out = append(out, e.Host)
	return append(out, lo.Map(e.Participants, func(p domain.Participant, _ int) domain.ConnID { return p.ConnID })...)
}

type SessionInfo struct {
	ID           domain.SessionID `json:"sessionId"`
	Host         domain.ConnID    `json:"hostSocketId"`
	CreatedAt    time.Time        `json:"createdAt"`
	Recording    bool             `json:"isRecording"`
	Participants int              `json:"participants"`
}

// Registry is the authoritative in-memory membership store.
// It never touches transport resources; callers broadcast from what it returns.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
	conns    map[domain.ConnID]domain.SessionID

	maxParticipants int
	now             func() time.Time
}

func NewRegistry(maxParticipants int) *Registry {
	return &Registry{
		sessions:        make(map[domain.SessionID]*domain.Session),
		conns:           make(map[domain.ConnID]domain.SessionID),
		maxParticipants: maxParticipants,
		now:             time.Now,
	}
}

// RegisterHost makes host the host of sid. A host already in another session
// moves: the old membership is released in the same step, and only once the
// registration is certain to succeed.
func (r *Registry) RegisterHost(sid domain.SessionID, host domain.ConnID, hostName string, property *domain.PropertySummary) (*Departure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; ok {
		return nil, domain.ErrSessionAlreadyHosted
	}
	left := r.releaseLocked(host)
	r.sessions[sid] = &domain.Session{
		ID:        sid,
		Host:      host,
		HostName:  hostName,
		CreatedAt: r.now(),
		Property:  property,
	}
	r.conns[host] = sid
	log.Info().Str("module", "app.registry").Str("session", string(sid)).Str("host", string(host)).Msg("host registered")
	return left, nil
}

// Join admits conn as a participant of sid, moving it out of any other
// session it belongs to. Nothing changes when Join fails.
func (r *Registry) Join(sid domain.SessionID, conn domain.ConnID, userID *string, name string) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return JoinResult{}, domain.ErrSessionNotFound
	}
	if cur, ok := r.conns[conn]; ok && cur == sid {
		return JoinResult{}, domain.ErrAlreadyInSession
	}
	if r.maxParticipants > 0 && len(s.Participants) >= r.maxParticipants {
		return JoinResult{}, domain.ErrSessionFull
	}
	res := JoinResult{
		Host:         s.Host,
		Participants: slices.Clone(s.Participants),
		Recording:    s.Recording,
		Property:     s.Property,
		Left:         r.releaseLocked(conn),
	}
	if res.Participants == nil {
		res.Participants = []domain.Participant{}
	}
	res.Self = domain.Participant{
		ConnID:   conn,
		UserID:   userID,
		Name:     name,
		JoinedAt: r.now(),
	}
	s.Participants = append(s.Participants, res.Self)
	r.conns[conn] = sid
	log.Info().Str("module", "app.registry").Str("session", string(sid)).Str("sid", string(conn)).Str("name", name).Msg("participant joined")
	return res, nil
}

// releaseLocked drops the current membership of conn. A host releasing its
// session ends it.
func (r *Registry) releaseLocked(conn domain.ConnID) *Departure {
	sid, ok := r.conns[conn]
	if !ok {
		return nil
	}
	if r.sessions[sid].Host == conn {
		ended, _ := r.endLocked(sid, HostLeftReason)
		return &Departure{SessionID: sid, Ended: &ended}
	}
	p, _ := r.leaveLocked(sid, conn)
	return &Departure{SessionID: sid, Participant: p}
}

// Leave removes a participant. It is idempotent: false means nothing was removed.
func (r *Registry) Leave(sid domain.SessionID, conn domain.ConnID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(sid, conn)
}

func (r *Registry) leaveLocked(sid domain.SessionID, conn domain.ConnID) (domain.Participant, bool) {
	s, ok := r.sessions[sid]
	if !ok {
		return domain.Participant{}, false
	}
	idx := slices.IndexFunc(s.Participants, func(p domain.Participant) bool { return p.ConnID == conn })
	if idx < 0 {
		return domain.Participant{}, false
	}
	p := s.Participants[idx]
	s.Participants = slices.Delete(s.Participants, idx, idx+1)
	delete(r.conns, conn)
	log.Info().Str("module", "app.registry").Str("session", string(sid)).Str("sid", string(conn)).Msg("participant left")
	return p, true
}

func (r *Registry) EndSession(sid domain.SessionID, reason string) (Ended, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endLocked(sid, reason)
}

// OnHostDisconnect ends whatever session conn hosts.
func (r *Registry) OnHostDisconnect(conn domain.ConnID) (Ended, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sid, ok := r.conns[conn]
	if !ok || r.sessions[sid].Host != conn {
		return Ended{}, false
	}
	return r.endLocked(sid, HostLeftReason)
}

func (r *Registry) endLocked(sid domain.SessionID, reason string) (Ended, bool) {
	s, ok := r.sessions[sid]
	if !ok {
		return Ended{}, false
	}
	delete(r.sessions, sid)
	delete(r.conns, s.Host)
	for _, p := range s.Participants {
		delete(r.conns, p.ConnID)
	}
	log.Info().Str("module", "app.registry").Str("session", string(sid)).Str("reason", reason).Int("participants", len(s.Participants)).Msg("session ended")
	return Ended{
		SessionID:    sid,
		Reason:       reason,
		Host:         s.Host,
		Participants: s.Participants,
	}, true
}

func (r *Registry) SetRecording(sid domain.SessionID, conn domain.ConnID, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sid]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.Host != conn {
		return domain.ErrNotHost
	}
	s.Recording = on
	log.Info().Str("module", "app.registry").Str("session", string(sid)).Bool("recording", on).Msg("recording changed")
	return nil
}

func (r *Registry) SessionOf(conn domain.ConnID) (domain.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.conns[conn]
	return sid, ok
}

func (r *Registry) IsHost(sid domain.SessionID, conn domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	return ok && s.Host == conn
}

// Members lists the host first, then participants in join order.
func (r *Registry) Members(sid domain.SessionID) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	out := make([]domain.ConnID, 0, len(s.Participants)+1)
	out = append(out, s.Host)
	for _, p := range s.Participants {
		out = append(out, p.ConnID)
	}
	return out
}

// Sender describes conn as a chat author within sid.
func (r *Registry) Sender(sid domain.SessionID, conn domain.ConnID) (domain.Sender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok {
		return domain.Sender{}, domain.ErrSessionNotFound
	}
	if s.Host == conn {
		return domain.Sender{Name: s.HostName, IsHost: true}, nil
	}
	p, ok := lo.Find(s.Participants, func(p domain.Participant) bool { return p.ConnID == conn })
	if !ok {
		return domain.Sender{}, domain.ErrNotMember
	}
	return domain.Sender{ID: p.UserID, Name: p.Name}, nil
}

// Snapshot returns a copy of the session state.
func (r *Registry) Snapshot(sid domain.SessionID) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	if !ok {
		return domain.Session{}, false
	}
	cp := *s
	cp.Participants = slices.Clone(s.Participants)
	return cp, true
}

func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := lo.MapToSlice(r.sessions, func(_ domain.SessionID, s *domain.Session) SessionInfo {
		return SessionInfo{
			ID:           s.ID,
			Host:         s.Host,
			CreatedAt:    s.CreatedAt,
			Recording:    s.Recording,
			Participants: len(s.Participants),
		}
	})
	slices.SortFunc(out, func(a, b SessionInfo) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}
