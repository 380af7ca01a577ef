// Command spotifydeck-emulator runs the daemon against a windowed Stream
// Deck emulator, for development without hardware.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/zmb3/spotify/v2"

	"github.com/bamarc/SpotifyForStreamController/internal/actions/devices"
	"github.com/bamarc/SpotifyForStreamController/internal/actions/nowplaying"
	"github.com/bamarc/SpotifyForStreamController/internal/actions/playback"
	"github.com/bamarc/SpotifyForStreamController/internal/actions/repeatmode"
	"github.com/bamarc/SpotifyForStreamController/internal/actions/shuffle"
	"github.com/bamarc/SpotifyForStreamController/internal/actions/skip"
	"github.com/bamarc/SpotifyForStreamController/internal/actions/volume"
	"github.com/bamarc/SpotifyForStreamController/internal/auth"
	"github.com/bamarc/SpotifyForStreamController/internal/config"
	"github.com/bamarc/SpotifyForStreamController/internal/device"
	"github.com/bamarc/SpotifyForStreamController/internal/device/emulator"
	"github.com/bamarc/SpotifyForStreamController/internal/registry"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

func main() {
	log.Println("=== Spotify Deck Emulator ===")
	log.Println("Close window or press Ctrl+C to exit")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	if !cfg.HasCredentials() {
		log.Fatal("Spotify app credentials not configured. Run 'spotifydeck setup' first.")
	}

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
	manager := auth.NewManager(authenticator, auth.NewKeyringStore(config.KeyringService, config.KeyOAuthToken))
	if !manager.HasToken() {
		log.Fatal("Not logged in to Spotify. Run 'spotifydeck login' first.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal")
		cancel()
	}()

	emu := emulator.New()
	if err := emu.Open(); err != nil {
		log.Fatalf("Failed to open emulator: %v", err)
	}

	go runWithDevice(ctx, cfg, manager, emu)

	// The GUI loop must run on the main goroutine
	if err := emu.RunGUI(); err != nil {
		log.Printf("Emulator GUI error: %v", err)
	}
}

// runWithDevice runs the registry against the emulator until context cancel.
func runWithDevice(ctx context.Context, cfg *config.Config, manager *auth.Manager, dev device.Device) {
	log.Printf("Connected to: %s", dev.GetModelName())

	dev.SetBrightness(byte(cfg.Deck.Brightness))
	dev.ForEachKey(func(key device.KeyID) error {
		return dev.ClearKey(key)
	})

	client := api.New(manager.Client())
	ctrl := spotify.New(client, time.Duration(cfg.Deck.PollSeconds)*time.Second)

	reg := registry.New(dev)
	step := cfg.Deck.VolumeStep
	reg.BindKey(device.KEY_1, skip.NewPrevious(ctrl))
	reg.BindKey(device.KEY_2, playback.New(ctrl))
	reg.BindKey(device.KEY_3, skip.NewNext(ctrl))
	reg.BindKey(device.KEY_4, shuffle.New(ctrl))
	reg.BindKey(device.KEY_5, volume.NewDown(ctrl, step))
	reg.BindKey(device.KEY_6, volume.NewUp(ctrl, step))
	reg.BindKey(device.KEY_7, repeatmode.New(ctrl))
	reg.BindKey(device.KEY_8, devices.New(ctrl))
	reg.BindDial(device.DIAL_1, volume.NewDial(ctrl, step))
	reg.BindStrip(nowplaying.New(ctrl))

	ctrl.OnUpdate(func(spotify.PlaybackState) {
		reg.Invalidate()
	})
	ctrl.Start(ctx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- reg.Start(ctx)
	}()

	log.Println("Ready! Transport on top row, volume and modes below")

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-errChan:
		if err != nil {
			log.Printf("Registry error: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		reg.Stop()
		ctrl.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		log.Println("Cleanup timed out")
	}

	dev.Close()
}
