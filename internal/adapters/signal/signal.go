package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/viewing/internal/app/relay"
	"github.com/dkeye/viewing/internal/config"
	"github.com/dkeye/viewing/internal/core"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// UserIDKey is the gin context key carrying the upstream-authenticated user id.
const UserIDKey = "user_id"

const defaultSendBuffer = 64

var errConnClosed = errors.New("connection closed")

type SignalWSController struct {
	Relay *relay.Relay

	readLimit  int64
	pingPeriod time.Duration
	sendBuffer int
	validate   *validator.Validate
}

func NewSignalWSController(r *relay.Relay, cfg *config.Config) *SignalWSController {
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &SignalWSController{
		Relay:      r,
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
		sendBuffer: sendBuffer,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// WsSignalConn is one client socket. It implements core.SignalConnection.
type WsSignalConn struct {
	id     domain.ConnID
	userID string
	conn   *websocket.Conn
	send   chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until either side closes.
// Every socket gets its own connection id; the upstream user id, if any, is
// the default identity for joins.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsSignalConn{
		id:     sid,
		userID: c.GetString(UserIDKey),
		conn:   ws,
		send:   make(chan core.Frame, ctl.sendBuffer),
	}
	ctl.Relay.Connect(sid, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}
