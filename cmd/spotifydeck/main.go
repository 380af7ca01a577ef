package main

import (
	"os"

	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/bamarc/SpotifyForStreamController/internal/auth"
	"github.com/bamarc/SpotifyForStreamController/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spotifydeck",
	Short: "Spotify playback controls on a Stream Deck Plus",
	Long: `spotifydeck drives a Stream Deck Plus as a Spotify remote: transport
controls on the keys, now-playing info on the touch strip, volume on a dial.

Run 'spotifydeck setup' once to configure Spotify app credentials, then
'spotifydeck login' to connect your account. Running with no arguments
starts the daemon.`,
	RunE:          runDaemon,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.AddCommand(loginCmd, logoutCmd, setupCmd, statusCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newManager builds the OAuth token manager from the configured Spotify app
// credentials, with the token pair persisted in the system keyring.
func newManager(cfg *config.Config) *auth.Manager {
	authenticator := spotifyauth.New(
		spotifyauth.WithClientID(cfg.Spotify.ClientID),
		spotifyauth.WithClientSecret(cfg.Spotify.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURL()),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopeUserReadCurrentlyPlaying,
		),
	)
	store := auth.NewKeyringStore(config.KeyringService, config.KeyOAuthToken)
	return auth.NewManager(authenticator, store)
}
