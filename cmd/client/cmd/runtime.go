package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/camera"     // registers the camera adapter
	_ "github.com/pion/mediadevices/pkg/driver/microphone" // registers the microphone adapter
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/viewing/internal/client/media"
	"github.com/dkeye/viewing/internal/client/rtc"
	"github.com/dkeye/viewing/internal/client/signaling"
	"github.com/dkeye/viewing/internal/client/ui"
)

// clientRuntime is everything a host or viewer controller is built from.
type clientRuntime struct {
	logger   zerolog.Logger
	console  *ui.Console
	channel  *signaling.Client
	acquirer *media.Acquirer
	api      *webrtc.API
	config   webrtc.Configuration
	surface  rtc.RemoteSurface
	files    *rtc.FileSurface
}

func newCodecSelector() (*mediadevices.CodecSelector, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, fmt.Errorf("vp8 params: %w", err)
	}
	vpxParams.BitRate = 500_000
	vpxParams.KeyFrameInterval = 30
	vpxParams.RateControlEndUsage = vpx.RateControlVBR

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, fmt.Errorf("opus params: %w", err)
	}
	opusParams.BitRate = 32_000
	opusParams.Latency = opus.Latency20ms

	return mediadevices.NewCodecSelector(
		mediadevices.WithVideoEncoders(&vpxParams),
		mediadevices.WithAudioEncoders(&opusParams),
	), nil
}

func newRuntime(ctx context.Context) (*clientRuntime, error) {
	logger := log.With().Str("session", viper.GetString(sessionKey)).Logger()

	selector, err := newCodecSelector()
	if err != nil {
		return nil, err
	}
	api, err := rtc.NewAPI(selector.Populate)
	if err != nil {
		return nil, err
	}

	rt := &clientRuntime{
		logger:   logger,
		console:  ui.NewConsole(os.Stdout, os.Stdin, viper.GetBool(yesKey), !viper.GetBool(noColourKey)),
		acquirer: media.NewAcquirer(media.NewMediaDevices(selector), logger),
		api:      api,
		config:   rtc.DefaultConfiguration(viper.GetStringSlice(stunKey)...),
	}
	if dir := viper.GetString(recordDirKey); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("record dir: %w", err)
		}
		rt.files = rtc.NewFileSurface(dir, logger)
		rt.files.SetRecording(false)
		rt.surface = rt.files
	}

	rt.channel, err = signaling.Dial(ctx, viper.GetString(serverKey), nil, logger)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *clientRuntime) close() {
	if rt.files != nil {
		if err := rt.files.Close(); err != nil {
			rt.logger.Warn().Err(err).Msg("closing recorded tracks")
		}
	}
}

// view is the UI handed to a controller. With a record dir, the track files
// follow the session's recording flag.
func (rt *clientRuntime) view() ui.UI {
	if rt.files == nil {
		return rt.console
	}
	return recordingUI{UI: rt.console, files: rt.files}
}

type recordingUI struct {
	ui.UI
	files *rtc.FileSurface
}

func (u recordingUI) ShowRecording(on bool) {
	u.files.SetRecording(on)
	u.UI.ShowRecording(on)
}

// confirmGate reports when the join dialog has been answered so the input
// loop does not compete with it for stdin.
type confirmGate struct {
	ui.UI
	once sync.Once
	done chan struct{}
}

func newConfirmGate(inner ui.UI) *confirmGate {
	return &confirmGate{UI: inner, done: make(chan struct{})}
}

func (g *confirmGate) ConfirmJoin(ctx context.Context, capability media.Capability, name string) (string, bool) {
	defer g.once.Do(func() { close(g.done) })
	return g.UI.ConfirmJoin(ctx, capability, name)
}
