package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/viewing/internal/adapters/signal"
	"github.com/dkeye/viewing/internal/app"
	"github.com/dkeye/viewing/internal/app/relay"
	"github.com/dkeye/viewing/internal/client/signaling"
	"github.com/dkeye/viewing/internal/config"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newServer(t *testing.T, store Pinger) (*httptest.Server, *relay.Relay) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Mode:       "test",
		StaticPath: t.TempDir(),
		ReadLimit:  1 << 16,
		Secret:     "test-secret",
		SendBuffer: 16,
	}
	rl := relay.New(app.NewRegistry(10), app.SimplePolicy{}, relay.Options{})
	srv := httptest.NewServer(SetupRouter(ctx, cfg, rl, store))
	t.Cleanup(srv.Close)
	return srv, rl
}

func dial(t *testing.T, srv *httptest.Server) *signaling.Client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	c, err := signaling.Dial(context.Background(), url, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// next waits for the next event and requires it to be a T.
func next[T signaling.Event](t *testing.T, c *signaling.Client) T {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		require.True(t, ok, "channel closed")
		got, ok := ev.(T)
		require.Truef(t, ok, "unexpected event %T", ev)
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func TestSignal_HostJoinChatEnd(t *testing.T) {
	req := require.New(t)
	srv, _ := newServer(t, nil)

	// Given a host and a viewer connected to the relay
	host := dial(t, srv)
	viewer := dial(t, srv)
	req.NoError(host.Host("s1", "Agent"))
	hosted := next[signaling.Hosted](t, host)
	req.Equal(domain.SessionID("s1"), hosted.SessionID)

	// When the viewer joins and chats
	req.NoError(viewer.Join("s1", nil, "Ann"))
	joined := next[signaling.JoinAccepted](t, viewer)
	req.Equal(hosted.HostSocketID, joined.HostSocketID)
	req.Empty(joined.Participants)

	roster := next[signaling.RosterChanged](t, host)
	req.NotNil(roster.Joined)
	req.Equal("Ann", roster.Joined.Name)

	req.NoError(viewer.SendChat("s1", "is the garden south facing?"))

	// Then both sides get the stamped message
	for _, c := range []*signaling.Client{host, viewer} {
		msg := next[signaling.Chat](t, c)
		req.Equal("is the garden south facing?", msg.Message)
		req.Equal("Ann", msg.Sender.Name)
	}

	// And ending reaches both exactly once
	req.NoError(host.End("s1", "See you"))
	for _, c := range []*signaling.Client{host, viewer} {
		ended := next[signaling.SessionEnded](t, c)
		req.Equal("See you", ended.Message)
	}
}

func TestSignal_RoutesSignalBetweenPeers(t *testing.T) {
	req := require.New(t)
	srv, _ := newServer(t, nil)

	host := dial(t, srv)
	viewer := dial(t, srv)
	req.NoError(host.Host("s1", "Agent"))
	hosted := next[signaling.Hosted](t, host)
	req.NoError(viewer.Join("s1", nil, "Ann"))
	_ = next[signaling.JoinAccepted](t, viewer)
	roster := next[signaling.RosterChanged](t, host)

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0\r\n"}`)
	req.NoError(host.SendSignal(roster.Joined.ConnID, offer))

	sig := next[signaling.Signal](t, viewer)
	req.Equal(hosted.HostSocketID, sig.From)
	req.JSONEq(string(offer), string(sig.Payload))
}

func TestSignal_JoinUnknownSession(t *testing.T) {
	req := require.New(t)
	srv, _ := newServer(t, nil)

	viewer := dial(t, srv)
	req.NoError(viewer.Join("nope", nil, "Ann"))

	rejected := next[signaling.JoinRejected](t, viewer)
	req.Contains(rejected.Message, "does not exist")
}

func TestSignal_HostDisconnectEndsSession(t *testing.T) {
	req := require.New(t)
	srv, rl := newServer(t, nil)

	host := dial(t, srv)
	viewer := dial(t, srv)
	req.NoError(host.Host("s1", "Agent"))
	_ = next[signaling.Hosted](t, host)
	req.NoError(viewer.Join("s1", nil, "Ann"))
	_ = next[signaling.JoinAccepted](t, viewer)

	req.NoError(host.Close())

	ended := next[signaling.SessionEnded](t, viewer)
	req.Equal(app.HostLeftReason, ended.Message)
	req.Eventually(func() bool { return len(rl.Registry().List()) == 0 }, time.Second, 10*time.Millisecond)
}

func TestSessionsAPI(t *testing.T) {
	req := require.New(t)
	srv, _ := newServer(t, nil)

	// Given a live session with a viewer
	host := dial(t, srv)
	viewer := dial(t, srv)
	req.NoError(host.Host("s1", "Agent"))
	_ = next[signaling.Hosted](t, host)
	req.NoError(viewer.Join("s1", nil, "Ann"))
	_ = next[signaling.JoinAccepted](t, viewer)

	// When the operator lists, reads and closes it
	res, err := http.Get(srv.URL + "/api/sessions")
	req.NoError(err)
	var list struct {
		Sessions []app.SessionInfo `json:"sessions"`
	}
	req.NoError(json.NewDecoder(res.Body).Decode(&list))
	res.Body.Close()
	req.Len(list.Sessions, 1)
	req.Equal(1, list.Sessions[0].Participants)

	res, err = http.Get(srv.URL + "/api/sessions/s1")
	req.NoError(err)
	req.Equal(http.StatusOK, res.StatusCode)
	var one map[string]json.RawMessage
	req.NoError(json.NewDecoder(res.Body).Decode(&one))
	res.Body.Close()
	for _, key := range []string{"sessionId", "hostSocketId", "hostName", "createdAt", "isRecording", "participants"} {
		req.Contains(one, key)
	}
	req.NotContains(one, "ID")
	req.JSONEq(`"s1"`, string(one["sessionId"]))
	req.JSONEq(`"Agent"`, string(one["hostName"]))
	var viewers []domain.Participant
	req.NoError(json.Unmarshal(one["participants"], &viewers))
	req.Len(viewers, 1)
	req.Equal("Ann", viewers[0].Name)

	del, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/s1?reason=Closed+early", nil)
	req.NoError(err)
	res, err = http.DefaultClient.Do(del)
	req.NoError(err)
	res.Body.Close()
	req.Equal(http.StatusOK, res.StatusCode)

	// Then everyone is told and the session is gone
	ended := next[signaling.SessionEnded](t, viewer)
	req.Equal("Closed early", ended.Message)

	res, err = http.Get(srv.URL + "/api/sessions/s1")
	req.NoError(err)
	res.Body.Close()
	req.Equal(http.StatusNotFound, res.StatusCode)

	res, err = http.DefaultClient.Do(del)
	req.NoError(err)
	res.Body.Close()
	req.Equal(http.StatusNotFound, res.StatusCode)
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name  string
		store Pinger
		want  int
	}{
		{"no store", nil, http.StatusOK},
		{"store up", stubPinger{}, http.StatusOK},
		{"store down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.store)
			res, err := http.Get(srv.URL + "/healthz")
			require.NoError(t, err)
			res.Body.Close()
			require.Equal(t, tt.want, res.StatusCode)
		})
	}
}

func TestIdentityMiddleware(t *testing.T) {
	req := require.New(t)

	// Given an engine where an upstream login stored a user id in the session
	r := gin.New()
	r.Use(sessions.Sessions(sessionCookie, cookie.NewStore([]byte("test-secret"))))
	r.Use(IdentityMiddleware())
	r.POST("/login", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(signal.UserIDKey, "user-42")
		_ = s.Save()
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(signal.UserIDKey))
	})

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/login", nil))

	// When a later request carries the cookie
	who := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range login.Result().Cookies() {
		who.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, who)

	// Then the id is on the request context, and absent without the cookie
	req.Equal("user-42", rec.Body.String())
	anon := httptest.NewRecorder()
	r.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	req.Empty(anon.Body.String())
}
