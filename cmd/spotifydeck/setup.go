package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bamarc/SpotifyForStreamController/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup: write config and store secrets in the keyring",
	RunE:  runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("=== Spotify Deck Setup ===")
	fmt.Println()
	fmt.Println("Create a Spotify app at https://developer.spotify.com/dashboard")
	fmt.Println("and register this redirect URI on it:")
	fmt.Println()

	existing, _ := config.Load()
	if existing == nil {
		existing = &config.Config{}
	}
	fmt.Println("  " + existing.RedirectURL())
	fmt.Println()

	cfg := &config.Config{}
	cfg.Spotify.ClientID = prompt(reader, "Spotify client ID", existing.Spotify.ClientID)
	cfg.Spotify.RedirectPort = existing.Spotify.RedirectPort
	cfg.Deck = existing.Deck

	secret := promptSecret(reader, "Spotify client secret", existing.Spotify.ClientSecret != "")
	if secret != "" {
		if err := config.SetKeyringSecret(config.KeyClientSecret, secret); err != nil {
			return fmt.Errorf("storing client secret in keyring: %w", err)
		}
		fmt.Println("  -> Stored in keyring")
	} else {
		fmt.Println("  -> Kept existing")
	}

	if err := config.WriteConfigFile(cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Config written to %s\n", config.DefaultConfigPath())
	fmt.Println("Next: run 'spotifydeck login' to connect your account.")
	return nil
}

// prompt reads a line, offering the existing value as default.
func prompt(reader *bufio.Reader, label, current string) string {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}

	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

// promptSecret reads a secret value, keeping the stored one on empty input.
func promptSecret(reader *bufio.Reader, label string, hasExisting bool) string {
	if hasExisting {
		fmt.Printf("%s [keep existing]: ", label)
	} else {
		fmt.Printf("%s: ", label)
	}

	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
