package media

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var rungs = []Constraints{
	{Video: true, Audio: true},
	{Video: true},
	{Audio: true},
}

type outcome int

const (
	success outcome = iota
	advance
	terminal
)

// ladder walks rungs strictly in order and never revisits one.
type ladder struct {
	rung int
}

func (l *ladder) current() (Constraints, bool) {
	if l.rung >= len(rungs) {
		return Constraints{}, false
	}
	return rungs[l.rung], true
}

// step records the result of the current rung.
func (l *ladder) step(err error) outcome {
	if err == nil {
		return success
	}
	l.rung++
	if l.rung >= len(rungs) {
		return terminal
	}
	return advance
}

type Acquirer struct {
	devices Devices
	logger  zerolog.Logger
}

func NewAcquirer(devices Devices, logger zerolog.Logger) *Acquirer {
	return &Acquirer{devices: devices, logger: logger.With().Str("module", "media").Logger()}
}

// Acquire runs the ladder. On terminal failure it returns an empty
// Acquisition together with an *AcquisitionError classified from the last
// rung's failure.
func (a *Acquirer) Acquire(ctx context.Context) (*Acquisition, error) {
	var l ladder
	for {
		c, ok := l.current()
		if !ok {
			return newAcquisition(nil, a.logger), &AcquisitionError{Kind: Unknown, Err: errors.New("no capture rung left")}
		}
		if err := ctx.Err(); err != nil {
			return newAcquisition(nil, a.logger), err
		}
		stream, err := a.devices.GetUserMedia(ctx, c)
		if err == nil && stream == nil {
			err = &DeviceError{Name: NotFoundError, Err: errors.New("no stream returned")}
		}
		switch l.step(err) {
		case success:
			acq := newAcquisition(stream, a.logger)
			a.logger.Info().Str("rung", c.String()).Interface("capability", acq.Capability()).Msg("media acquired")
			return acq, nil
		case advance:
			a.logger.Warn().Err(err).Str("rung", c.String()).Str("kind", Classify(err).String()).Msg("capture rung failed, falling back")
		case terminal:
			kind := Classify(err)
			a.logger.Error().Err(err).Str("rung", c.String()).Str("kind", kind.String()).Msg("media acquisition failed")
			return newAcquisition(nil, a.logger), &AcquisitionError{Kind: kind, Err: err}
		}
	}
}
