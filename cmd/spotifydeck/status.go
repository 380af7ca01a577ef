package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamarc/SpotifyForStreamController/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check config, secrets, and device health",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Spotify Deck Status ===")
	fmt.Println()

	allOK := true

	configPath := config.DefaultConfigPath()
	fmt.Printf("Config file: %s\n", configPath)
	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("  Status: found")
	} else {
		fmt.Println("  Status: NOT FOUND")
		allOK = false
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  Load error: %v\n", err)
		allOK = false
	}
	fmt.Println()

	fmt.Println("Spotify app:")
	if cfg != nil && cfg.Spotify.ClientID != "" {
		fmt.Printf("  Client ID: %s\n", cfg.Spotify.ClientID)
	} else {
		fmt.Println("  Client ID: NOT SET")
		allOK = false
	}
	if cfg != nil && cfg.Spotify.ClientSecret != "" {
		fmt.Println("  Client secret: set")
	} else {
		fmt.Println("  Client secret: NOT SET")
		allOK = false
	}
	if cfg != nil {
		fmt.Printf("  Redirect URL: %s\n", cfg.RedirectURL())
	}
	fmt.Println()

	fmt.Println("Spotify account:")
	if cfg != nil && cfg.HasCredentials() && newManager(cfg).HasToken() {
		fmt.Println("  Token: stored")
	} else {
		fmt.Println("  Token: NOT STORED (run 'spotifydeck login')")
		allOK = false
	}
	fmt.Println()

	fmt.Println("Stream Deck:")
	if dev := tryGetDeviceWithTimeout(2 * time.Second); dev != nil {
		fmt.Println("  Device: CONNECTED")
		dev.Close()
	} else {
		fmt.Println("  Device: not detected")
	}
	fmt.Println()

	if allOK {
		fmt.Println("All checks passed.")
	} else {
		fmt.Println("Some checks failed. Run 'spotifydeck setup' to configure.")
	}
	return nil
}
