package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/viewing/internal/client/media"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestConsole_ConfirmJoin(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantOK   bool
	}{
		{"enter keeps the name", "\n", "Ann", true},
		{"typed name replaces it", "Ann Smith\n", "Ann Smith", true},
		{"n cancels", "n\n", "", false},
		{"closed input cancels", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			var out bytes.Buffer
			c := NewConsole(&out, strings.NewReader(tt.input), false, false)

			name, ok := c.ConfirmJoin(context.Background(), media.Capability{HasVideo: true, VideoEnabled: true}, "Ann")

			req.Equal(tt.wantName, name)
			req.Equal(tt.wantOK, ok)
			req.Contains(out.String(), "Camera: on  Microphone: off")
		})
	}
}

func TestConsole_ConfirmJoinHonoursContext(t *testing.T) {
	req := require.New(t)

	// input that never arrives
	r, w := io.Pipe()
	defer w.Close()
	c := NewConsole(&bytes.Buffer{}, r, false, false)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := c.ConfirmJoin(ctx, media.Capability{}, "Ann")

	req.False(ok)
}

func TestConsole_AutoConfirmAndLines(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	c := NewConsole(&out, strings.NewReader("hello\n/leave\n"), true, false)

	name, ok := c.ConfirmJoin(context.Background(), media.Capability{}, "Ann")
	req.True(ok)
	req.Equal("Ann", name)

	var got []string
	for line := range c.Lines() {
		got = append(got, line)
	}
	req.Equal([]string{"hello", "/leave"}, got)
}

func TestConsole_Renders(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	c := NewConsole(&out, nil, true, false)

	c.ShowRoster("h", []domain.Participant{{ConnID: "v1", Name: "Ann"}})
	c.ShowChat(domain.ChatMessage{Message: "hi there", Sender: domain.Sender{Name: "Ann"}})
	c.ShowRecording(true)
	c.Toast(Warning, "careful")

	req.Contains(out.String(), "Ann")
	req.Contains(out.String(), "hi there")
	req.Contains(out.String(), "careful")
}
