package app

import (
	"testing"
	"time"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(limit int) *Registry {
	r := NewRegistry(limit)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return r
}

func mustHost(t *testing.T, r *Registry, sid domain.SessionID, host domain.ConnID, name string, property *domain.PropertySummary) {
	t.Helper()
	left, err := r.RegisterHost(sid, host, name, property)
	require.NoError(t, err)
	require.Nil(t, left)
}

func TestRegistry_HostThenJoin(t *testing.T) {
	req := require.New(t)

	// Given a hosted session
	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)

	// When two viewers join
	first, err := r.Join("s1", "v1", nil, "Ann")
	req.NoError(err)
	second, err := r.Join("s1", "v2", nil, "Bob")
	req.NoError(err)

	// Then each snapshot excludes the host and the joiner itself
	req.Equal(domain.ConnID("h"), first.Host)
	req.Empty(first.Participants)
	req.NotNil(first.Participants)
	req.Len(second.Participants, 1)
	req.Equal(domain.ConnID("v1"), second.Participants[0].ConnID)
	req.Equal([]domain.ConnID{"h", "v1", "v2"}, r.Members("s1"))
}

func TestRegistry_RegisterHostTwice(t *testing.T) {
	req := require.New(t)

	// Given a hosted session
	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)

	// When another connection hosts the same id
	_, err := r.RegisterHost("s1", "h2", "Other", nil)

	// Then it is refused and the first host keeps the session
	req.ErrorIs(err, domain.ErrSessionAlreadyHosted)
	req.True(r.IsHost("s1", "h"))
	_, ok := r.SessionOf("h2")
	req.False(ok)
}

func TestRegistry_JoinErrors(t *testing.T) {
	req := require.New(t)

	r := newTestRegistry(1)
	mustHost(t, r, "s1", "h", "Agent", nil)
	_, err := r.Join("s1", "v1", nil, "Ann")
	req.NoError(err)

	_, err = r.Join("missing", "v2", nil, "Bob")
	req.ErrorIs(err, domain.ErrSessionNotFound)

	_, err = r.Join("s1", "v1", nil, "Ann")
	req.ErrorIs(err, domain.ErrAlreadyInSession)

	_, err = r.Join("s1", "v2", nil, "Bob")
	req.ErrorIs(err, domain.ErrSessionFull)

	// the host does not count toward the cap and cannot join its own session
	_, err = r.Join("s1", "h", nil, "Agent")
	req.ErrorIs(err, domain.ErrAlreadyInSession)
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	req := require.New(t)

	// Given a viewer in a session
	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)
	_, err := r.Join("s1", "v1", nil, "Ann")
	req.NoError(err)

	// When it leaves twice
	p, removed := r.Leave("s1", "v1")
	_, again := r.Leave("s1", "v1")

	// Then only the first leave removes anything
	req.True(removed)
	req.Equal("Ann", p.Name)
	req.False(again)
	_, ok := r.SessionOf("v1")
	req.False(ok)
	req.Equal([]domain.ConnID{"h"}, r.Members("s1"))
}

func TestRegistry_EndReturnsEveryoneOnce(t *testing.T) {
	req := require.New(t)

	// Given a session with two viewers
	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)
	_, _ = r.Join("s1", "v1", nil, "Ann")
	_, _ = r.Join("s1", "v2", nil, "Bob")

	// When it ends twice
	ended, ok := r.EndSession("s1", "done")
	_, again := r.EndSession("s1", "done")

	// Then the first call lists every member and the second does nothing
	req.True(ok)
	req.False(again)
	req.Equal("done", ended.Reason)
	req.Equal([]domain.ConnID{"h", "v1", "v2"}, ended.Members())
	for _, conn := range ended.Members() {
		_, in := r.SessionOf(conn)
		req.False(in)
	}
	req.Empty(r.List())
}

func TestRegistry_HostDisconnect(t *testing.T) {
	req := require.New(t)

	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)
	_, _ = r.Join("s1", "v1", nil, "Ann")

	// a viewer disconnecting is not a host disconnect
	_, ok := r.OnHostDisconnect("v1")
	req.False(ok)

	ended, ok := r.OnHostDisconnect("h")
	req.True(ok)
	req.Equal(HostLeftReason, ended.Reason)
	_, ok = r.Snapshot("s1")
	req.False(ok)
}

func TestRegistry_RecordingOnlyByHost(t *testing.T) {
	req := require.New(t)

	// Given a session with a viewer
	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)
	_, _ = r.Join("s1", "v1", nil, "Ann")

	// When the viewer and then the host set recording
	req.ErrorIs(r.SetRecording("s1", "v1", true), domain.ErrNotHost)
	req.NoError(r.SetRecording("s1", "h", true))

	// Then a late joiner sees the flag
	res, err := r.Join("s1", "v2", nil, "Bob")
	req.NoError(err)
	req.True(res.Recording)
	req.ErrorIs(r.SetRecording("missing", "h", true), domain.ErrSessionNotFound)
}

func TestRegistry_Sender(t *testing.T) {
	req := require.New(t)

	uid := "user-7"
	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)
	_, _ = r.Join("s1", "v1", &uid, "Ann")

	host, err := r.Sender("s1", "h")
	req.NoError(err)
	req.Equal(domain.Sender{Name: "Agent", IsHost: true}, host)

	viewer, err := r.Sender("s1", "v1")
	req.NoError(err)
	req.Equal("Ann", viewer.Name)
	req.Equal(&uid, viewer.ID)
	req.False(viewer.IsHost)

	_, err = r.Sender("s1", "stranger")
	req.ErrorIs(err, domain.ErrNotMember)
}

func TestRegistry_ListOrderedByCreation(t *testing.T) {
	req := require.New(t)

	r := newTestRegistry(0)
	mustHost(t, r, "b", "h1", "Agent", nil)
	mustHost(t, r, "a", "h2", "Agent", nil)
	_, _ = r.Join("a", "v1", nil, "Ann")

	list := r.List()
	req.Len(list, 2)
	req.Equal(domain.SessionID("b"), list[0].ID)
	req.Equal(domain.SessionID("a"), list[1].ID)
	req.Equal(1, list[1].Participants)
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)

	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)
	_, _ = r.Join("s1", "v1", nil, "Ann")

	snap, ok := r.Snapshot("s1")
	req.True(ok)
	snap.Participants[0].Name = "changed"

	again, _ := r.Snapshot("s1")
	req.Equal("Ann", again.Participants[0].Name)
}

func TestRegistry_JoinMovesParticipant(t *testing.T) {
	req := require.New(t)

	// Given v1 watching s1
	r := newTestRegistry(1)
	mustHost(t, r, "s1", "h1", "Agent", nil)
	mustHost(t, r, "s2", "h2", "Agent", nil)
	_, err := r.Join("s1", "v1", nil, "Ann")
	req.NoError(err)

	// When it joins s2
	res, err := r.Join("s2", "v1", nil, "Ann")

	// Then the s1 membership is handed back and released
	req.NoError(err)
	req.NotNil(res.Left)
	req.Equal(domain.SessionID("s1"), res.Left.SessionID)
	req.Equal("Ann", res.Left.Participant.Name)
	req.Nil(res.Left.Ended)
	req.Equal([]domain.ConnID{"h1"}, r.Members("s1"))
	req.Equal([]domain.ConnID{"h2", "v1"}, r.Members("s2"))
}

func TestRegistry_FailedJoinChangesNothing(t *testing.T) {
	req := require.New(t)

	// Given v1 watching s1 and s2 at its cap
	r := newTestRegistry(1)
	mustHost(t, r, "s1", "h1", "Agent", nil)
	mustHost(t, r, "s2", "h2", "Agent", nil)
	_, _ = r.Join("s1", "v1", nil, "Ann")
	_, _ = r.Join("s2", "v2", nil, "Bob")

	// When v1 tries a missing and a full session
	_, missing := r.Join("nope", "v1", nil, "Ann")
	_, full := r.Join("s2", "v1", nil, "Ann")

	// Then both fail and v1 stays where it was
	req.ErrorIs(missing, domain.ErrSessionNotFound)
	req.ErrorIs(full, domain.ErrSessionFull)
	sid, ok := r.SessionOf("v1")
	req.True(ok)
	req.Equal(domain.SessionID("s1"), sid)
	req.Equal([]domain.ConnID{"h1", "v1"}, r.Members("s1"))
}

func TestRegistry_HostMovingEndsOldSession(t *testing.T) {
	req := require.New(t)

	r := newTestRegistry(0)
	mustHost(t, r, "s1", "h", "Agent", nil)
	_, _ = r.Join("s1", "v1", nil, "Ann")

	// hosting a taken id changes nothing
	mustHost(t, r, "s2", "h2", "Other", nil)
	left, err := r.RegisterHost("s2", "h", "Agent", nil)
	req.ErrorIs(err, domain.ErrSessionAlreadyHosted)
	req.Nil(left)
	req.True(r.IsHost("s1", "h"))

	left, err = r.RegisterHost("s3", "h", "Agent", nil)
	req.NoError(err)
	req.NotNil(left)
	req.NotNil(left.Ended)
	req.Equal(HostLeftReason, left.Ended.Reason)
	req.Equal([]domain.ConnID{"h", "v1"}, left.Ended.Members())
	_, ok := r.Snapshot("s1")
	req.False(ok)
	_, ok = r.SessionOf("v1")
	req.False(ok)
	req.True(r.IsHost("s3", "h"))
}
