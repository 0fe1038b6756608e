package media_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dkeye/viewing/internal/client/media"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/dkeye/viewing/internal/mocks"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	videoAudio = media.Constraints{Video: true, Audio: true}
	videoOnly  = media.Constraints{Video: true}
	audioOnly  = media.Constraints{Audio: true}
)

func denied() error {
	return &media.DeviceError{Name: media.NotAllowedError, Err: errors.New("user said no")}
}

func streamOf(ctrl *gomock.Controller, kinds ...webrtc.RTPCodecType) (*mocks.MockStream, []*mocks.MockTrack) {
	tracks := make([]*mocks.MockTrack, 0, len(kinds))
	out := make([]media.Track, 0, len(kinds))
	for _, k := range kinds {
		t := mocks.NewMockTrack(ctrl)
		t.EXPECT().Kind().Return(k).AnyTimes()
		tracks = append(tracks, t)
		out = append(out, t)
	}
	s := mocks.NewMockStream(ctrl)
	s.EXPECT().Tracks().Return(out).AnyTimes()
	return s, tracks
}

func TestAcquire_FallsBackToVideoOnly(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	// Given video+audio is denied and video alone succeeds
	stream, tracks := streamOf(ctrl, webrtc.RTPCodecTypeVideo)
	devices := mocks.NewMockDevices(ctrl)
	gomock.InOrder(
		devices.EXPECT().GetUserMedia(gomock.Any(), videoAudio).Return(nil, denied()).Times(1),
		devices.EXPECT().GetUserMedia(gomock.Any(), videoOnly).Return(stream, nil).Times(1),
	)

	// When
	acq, err := media.NewAcquirer(devices, zerolog.Nop()).Acquire(context.Background())

	// Then rung 1 is never retried and audio stays off
	req.NoError(err)
	c := acq.Capability()
	req.True(c.VideoEnabled)
	req.False(c.AudioEnabled)
	req.False(c.HasAudio)

	tracks[0].EXPECT().Stop().Times(1)
	acq.Release()
	acq.Release()
}

func TestAcquire_AudioOnlyAfterTwoFailures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	stream, _ := streamOf(ctrl, webrtc.RTPCodecTypeAudio)
	devices := mocks.NewMockDevices(ctrl)
	gomock.InOrder(
		devices.EXPECT().GetUserMedia(gomock.Any(), videoAudio).Return(nil, &media.DeviceError{Name: media.NotFoundError}),
		devices.EXPECT().GetUserMedia(gomock.Any(), videoOnly).Return(nil, &media.DeviceError{Name: media.NotReadableError}),
		devices.EXPECT().GetUserMedia(gomock.Any(), audioOnly).Return(stream, nil),
	)

	acq, err := media.NewAcquirer(devices, zerolog.Nop()).Acquire(context.Background())
	req.NoError(err)
	req.Equal(media.Capability{HasAudio: true, AudioEnabled: true}, acq.Capability())
}

func TestAcquire_TerminalFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	// Given every rung is denied
	devices := mocks.NewMockDevices(ctrl)
	gomock.InOrder(
		devices.EXPECT().GetUserMedia(gomock.Any(), videoAudio).Return(nil, denied()),
		devices.EXPECT().GetUserMedia(gomock.Any(), videoOnly).Return(nil, denied()),
		devices.EXPECT().GetUserMedia(gomock.Any(), audioOnly).Return(nil, denied()),
	)

	// When
	acq, err := media.NewAcquirer(devices, zerolog.Nop()).Acquire(context.Background())

	// Then
	req.Error(err)
	var ae *media.AcquisitionError
	req.ErrorAs(err, &ae)
	req.Equal(media.PermissionDenied, ae.Kind)
	req.ErrorIs(err, domain.ErrMediaPermissionDenied)
	req.Equal(media.Capability{}, acq.Capability())
	req.Empty(acq.Tracks())
	req.False(acq.SetAudioEnabled(true))
	acq.Release()
}

func TestAcquire_ClassificationNeverChangesOrder(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	devices := mocks.NewMockDevices(ctrl)
	gomock.InOrder(
		devices.EXPECT().GetUserMedia(gomock.Any(), videoAudio).Return(nil, &media.DeviceError{Name: media.SecurityError}),
		devices.EXPECT().GetUserMedia(gomock.Any(), videoOnly).Return(nil, errors.New("boom")),
		devices.EXPECT().GetUserMedia(gomock.Any(), audioOnly).Return(nil, &media.DeviceError{Name: "WeirdError"}),
	)

	_, err := media.NewAcquirer(devices, zerolog.Nop()).Acquire(context.Background())
	req.ErrorIs(err, domain.ErrMediaDeviceUnavailable)
}

func TestAcquisition_TogglesOnlyAcquiredKinds(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	stream, tracks := streamOf(ctrl, webrtc.RTPCodecTypeVideo, webrtc.RTPCodecTypeAudio)
	devices := mocks.NewMockDevices(ctrl)
	devices.EXPECT().GetUserMedia(gomock.Any(), videoAudio).Return(stream, nil)

	acq, err := media.NewAcquirer(devices, zerolog.Nop()).Acquire(context.Background())
	req.NoError(err)

	req.True(acq.SetAudioEnabled(false))
	req.True(acq.SetVideoEnabled(false))
	c := acq.Capability()
	req.False(c.AudioEnabled)
	req.False(c.VideoEnabled)
	req.True(c.HasAudio)

	for _, tr := range tracks {
		tr.EXPECT().Stop().Times(1)
	}
	acq.Release()
	req.False(acq.SetVideoEnabled(true))
	req.Empty(acq.LocalTracks())
}

func TestClassify(t *testing.T) {
	cases := map[string]media.FailureKind{
		media.NotAllowedError:       media.PermissionDenied,
		media.PermissionDeniedError: media.PermissionDenied,
		media.NotReadableError:      media.DeviceNotReadable,
		media.TrackStartError:       media.DeviceNotReadable,
		media.NotFoundError:         media.DeviceNotFound,
		media.DevicesNotFoundError:  media.DeviceNotFound,
		media.OverconstrainedError:  media.DeviceNotFound,
		media.SecurityError:         media.SecurityRestricted,
		"AbortError":                media.Unknown,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, want, media.Classify(&media.DeviceError{Name: name}))
		})
	}
	require.Equal(t, media.Unknown, media.Classify(errors.New("plain")))
}
