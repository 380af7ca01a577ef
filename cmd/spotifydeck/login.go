package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamarc/SpotifyForStreamController/internal/auth"
	"github.com/bamarc/SpotifyForStreamController/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Connect a Spotify account via the browser",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Disconnect the Spotify account and forget the stored token",
	RunE:  runLogout,
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.HasCredentials() {
		return fmt.Errorf("Spotify app credentials not configured; run 'spotifydeck setup' first")
	}

	manager := newManager(cfg)

	state, err := randomState()
	if err != nil {
		return err
	}

	fmt.Println("Open this URL in your browser to connect Spotify:")
	fmt.Println()
	fmt.Println("  " + manager.AuthURL(state))
	fmt.Println()
	fmt.Println("Waiting for Spotify to redirect back...")

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Spotify.RedirectPort)
	code, err := auth.WaitForCode(ctx, addr, state)
	if err != nil {
		return err
	}

	if err := manager.Exchange(ctx, code); err != nil {
		return err
	}

	fmt.Println("Logged in. Token stored in the system keyring.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := newManager(cfg).Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// randomState generates the CSRF state for the authorize redirect.
func randomState() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
