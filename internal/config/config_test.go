package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFile_DefaultsWhenMissing(t *testing.T) {
	req := require.New(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	req.NoError(err)

	req.Equal(8080, cfg.Port)
	req.Equal(54*time.Second, cfg.PingPeriod)
	req.Equal(50, cfg.Relay.MaxParticipants)
	req.Equal(10*time.Second, cfg.Relay.JoinRateInterval)
	req.Equal(2000, cfg.Chat.MaxLength)
	req.Equal("none", cfg.Store.Driver)
}

func TestLoadFile_FileAndEnvOverride(t *testing.T) {
	req := require.New(t)

	// Given
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	req.NoError(os.WriteFile(path, []byte("port: 9000\nrelay:\n  max_participants: 3\nstore:\n  driver: sqlite\n  dsn: file::memory:\n"), 0o600))
	t.Setenv("VIEWING_CHAT_MAX_LENGTH", "42")

	// When
	cfg, err := LoadFile(path)

	// Then
	req.NoError(err)
	req.Equal(9000, cfg.Port)
	req.Equal(3, cfg.Relay.MaxParticipants)
	req.Equal(42, cfg.Chat.MaxLength)
	req.Equal("sqlite", cfg.Store.Driver)
}

func TestLoadFile_RejectsUnknownDriver(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "config.bad.yaml")
	req.NoError(os.WriteFile(path, []byte("store:\n  driver: mongo\n"), 0o600))

	_, err := LoadFile(path)
	req.Error(err)
}
