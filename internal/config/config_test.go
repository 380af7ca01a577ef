package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func writeTempConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SPOTIFYDECK_CONFIG", path)
}

func TestLoadDefaults(t *testing.T) {
	keyring.MockInit()
	t.Setenv("SPOTIFYDECK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultRedirectPort, cfg.Spotify.RedirectPort)
	assert.Equal(t, DefaultBrightness, cfg.Deck.Brightness)
	assert.Equal(t, DefaultVolumeStep, cfg.Deck.VolumeStep)
	assert.Equal(t, DefaultPollSeconds, cfg.Deck.PollSeconds)
	assert.False(t, cfg.HasCredentials())
}

func TestLoadYAMLFile(t *testing.T) {
	keyring.MockInit()
	writeTempConfig(t, `
spotify:
  client_id: abc123
  redirect_port: 9999
deck:
  brightness: 50
  volume_step: 10
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Spotify.ClientID)
	assert.Equal(t, 9999, cfg.Spotify.RedirectPort)
	assert.Equal(t, 50, cfg.Deck.Brightness)
	assert.Equal(t, 10, cfg.Deck.VolumeStep)
	assert.Equal(t, DefaultPollSeconds, cfg.Deck.PollSeconds, "unset fields keep defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	keyring.MockInit()
	writeTempConfig(t, `
spotify:
  client_id: from-file
`)
	t.Setenv("SPOTIFY_ID", "from-env")
	t.Setenv("SPOTIFY_SECRET", "secret-from-env")
	t.Setenv("SPOTIFYDECK_VOLUME_STEP", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Spotify.ClientID)
	assert.Equal(t, "secret-from-env", cfg.Spotify.ClientSecret)
	assert.Equal(t, 3, cfg.Deck.VolumeStep)
	assert.True(t, cfg.HasCredentials())
}

func TestKeyringSecretLayering(t *testing.T) {
	keyring.MockInit()
	t.Setenv("SPOTIFYDECK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, SetKeyringSecret(KeyClientSecret, "keyring-secret"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "keyring-secret", cfg.Spotify.ClientSecret)

	// Env still wins over keyring
	t.Setenv("SPOTIFY_SECRET", "env-secret")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
}

func TestRedirectURL(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	assert.Equal(t, "http://127.0.0.1:8036/callback", cfg.RedirectURL())

	cfg.Spotify.RedirectPort = 9000
	assert.Equal(t, "http://127.0.0.1:9000/callback", cfg.RedirectURL())
}
