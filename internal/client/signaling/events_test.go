package signaling

import (
	"testing"

	"github.com/dkeye/viewing/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_SignalKeepsPayloadOpaque(t *testing.T) {
	req := require.New(t)

	ev, err := decodeEvent([]byte(`{"type":"signal","payload":{"from":"h","to":"v","signal":{"candidate":"c","sdpMid":"0"}}}`))

	req.NoError(err)
	sig, ok := ev.(Signal)
	req.True(ok)
	req.Equal(domain.ConnID("h"), sig.From)
	req.JSONEq(`{"candidate":"c","sdpMid":"0"}`, string(sig.Payload))
}

func TestDecodeEvent_RosterCarriesOneSide(t *testing.T) {
	req := require.New(t)

	joined, err := decodeEvent([]byte(`{"type":"participant-joined","payload":{"socketId":"v1","userId":null,"name":"Ann"}}`))
	req.NoError(err)
	req.NotNil(joined.(RosterChanged).Joined)
	req.Nil(joined.(RosterChanged).Left)

	left, err := decodeEvent([]byte(`{"type":"participant-left","payload":{"socketId":"v1","name":"Ann"}}`))
	req.NoError(err)
	req.Nil(left.(RosterChanged).Joined)
	req.Equal("Ann", left.(RosterChanged).Left.Name)
}

func TestDecodeEvent_IgnoresPongAndUnknown(t *testing.T) {
	req := require.New(t)

	for _, frame := range []string{`{"type":"pong"}`, `{"type":"something-new","payload":{}}`} {
		ev, err := decodeEvent([]byte(frame))
		req.NoError(err)
		req.Nil(ev)
	}

	_, err := decodeEvent([]byte(`{"type":"viewing-chat-message","payload":"oops"}`))
	req.Error(err)
}
