package relay

import (
	"sync"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/rs/zerolog"
)

// sessionActor serializes every mutation and broadcast of one session.
// Closures run one at a time in submission order and must not call do on
// the same actor.
type sessionActor struct {
	id     domain.SessionID
	inbox  chan func()
	done   chan struct{}
	once   sync.Once
	logger zerolog.Logger
}

func newSessionActor(id domain.SessionID, logger zerolog.Logger) *sessionActor {
	return &sessionActor{
		id:     id,
		inbox:  make(chan func()),
		done:   make(chan struct{}),
		logger: logger.With().Str("session", string(id)).Logger(),
	}
}

func (a *sessionActor) run() {
	a.logger.Debug().Msg("session actor started")
	defer a.logger.Debug().Msg("session actor stopped")
	for {
		select {
		case <-a.done:
			return
		default:
		}
		select {
		case fn := <-a.inbox:
			a.exec(fn)
		case <-a.done:
			return
		}
	}
}

func (a *sessionActor) exec(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error().Interface("panic", rec).Msg("session actor recovered")
		}
	}()
	fn()
}

// do runs fn on the actor and waits for it. It reports false when the actor
// has already stopped and fn was not run.
func (a *sessionActor) do(fn func()) bool {
	finished := make(chan struct{})
	select {
	case a.inbox <- func() { defer close(finished); fn() }:
	case <-a.done:
		return false
	}
	<-finished
	return true
}

func (a *sessionActor) stop() {
	a.once.Do(func() { close(a.done) })
}
