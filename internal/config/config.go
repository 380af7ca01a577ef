// Package config provides configuration loading from YAML files, the system
// keyring, and environment variables. Environment variables take precedence
// for dev flexibility.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	// KeyringService is the keyring service name for spotifydeck secrets.
	KeyringService = "spotifydeck"

	// Keyring account names for each secret.
	KeyClientSecret = "spotify-client-secret"
	KeyOAuthToken   = "spotify-oauth-token"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultRedirectPort = 8036
	DefaultBrightness   = 80
	DefaultVolumeStep   = 5
	DefaultPollSeconds  = 5
)

// Config holds the full application configuration, assembled from YAML + keyring + env.
type Config struct {
	Spotify SpotifyConfig `yaml:"spotify"`
	Deck    DeckConfig    `yaml:"deck"`
}

// SpotifyConfig holds the Spotify application credentials and OAuth settings.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	RedirectPort int    `yaml:"redirect_port"`
	ClientSecret string `yaml:"-"` // secret, not in YAML
}

// DeckConfig holds device-facing settings.
type DeckConfig struct {
	Brightness  int `yaml:"brightness"`
	VolumeStep  int `yaml:"volume_step"`
	PollSeconds int `yaml:"poll_seconds"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "spotifydeck")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	// Allow override via environment variable
	if p := os.Getenv("SPOTIFYDECK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Load assembles configuration from YAML file + keyring + environment
// variables. Environment variables always take precedence. Returns a usable
// Config even if some sources are missing; callers decide which fields are
// required for their command.
func Load() (*Config, error) {
	cfg := &Config{}

	// 1. Try to load YAML config file
	configPath := DefaultConfigPath()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	// 2. Layer in keyring secrets (ignore errors - keyring may not be populated)
	if secret, err := keyring.Get(KeyringService, KeyClientSecret); err == nil {
		cfg.Spotify.ClientSecret = secret
	}

	// 3. Environment variables override everything. SPOTIFY_ID/SPOTIFY_SECRET
	// match the names the Spotify SDK itself reads.
	if v := os.Getenv("SPOTIFY_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFYDECK_REDIRECT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Spotify.RedirectPort = port
		}
	}
	if v := os.Getenv("SPOTIFYDECK_VOLUME_STEP"); v != "" {
		if step, err := strconv.Atoi(v); err == nil {
			cfg.Deck.VolumeStep = step
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills unset numeric fields.
func (c *Config) applyDefaults() {
	if c.Spotify.RedirectPort == 0 {
		c.Spotify.RedirectPort = DefaultRedirectPort
	}
	if c.Deck.Brightness == 0 {
		c.Deck.Brightness = DefaultBrightness
	}
	if c.Deck.VolumeStep == 0 {
		c.Deck.VolumeStep = DefaultVolumeStep
	}
	if c.Deck.PollSeconds == 0 {
		c.Deck.PollSeconds = DefaultPollSeconds
	}
}

// RedirectURL returns the loopback OAuth redirect URL. It must match one of
// the redirect URIs registered on the Spotify application.
func (c *Config) RedirectURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", c.Spotify.RedirectPort)
}

// HasCredentials reports whether a client ID and secret are configured.
func (c *Config) HasCredentials() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// WriteConfigFile writes the non-secret portion of config to the YAML file.
func WriteConfigFile(cfg *Config) error {
	dir := filepath.Dir(DefaultConfigPath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(DefaultConfigPath(), data, 0o644)
}

// SetKeyringSecret stores a secret in the system keyring.
func SetKeyringSecret(account, value string) error {
	// Delete first to avoid "already exists" errors on update
	_ = keyring.Delete(KeyringService, account)
	return keyring.Set(KeyringService, account, value)
}

// GetKeyringSecret retrieves a secret from the system keyring.
func GetKeyringSecret(account string) (string, error) {
	return keyring.Get(KeyringService, account)
}
