package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	api "github.com/zmb3/spotify/v2"
	"rafaelmartins.com/p/streamdeck"

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
	"github.com/bamarc/SpotifyForStreamController/internal/registry"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

func runDaemon(cmd *cobra.Command, args []string) error {
	log.Println("=== Spotify Deck Daemon ===")
	log.Println("Press Ctrl+C to exit")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.HasCredentials() {
		log.Fatal("Spotify app credentials not configured. Run 'spotifydeck setup' first.")
	}

	manager := newManager(cfg)
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

	// Main device loop - wait for device, run, repeat on disconnect
	for {
		dev := waitForHardwareDevice(ctx)
		if dev == nil {
			break
		}

		select {
		case <-ctx.Done():
			log.Println("Exiting...")
			dev.Close()
			return nil
		default:
		}

		// USB enumeration may not be complete even after a successful open
		time.Sleep(500 * time.Millisecond)

		runWithDevice(ctx, cfg, manager, dev)

		select {
		case <-ctx.Done():
			log.Println("Exiting...")
			return nil
		default:
			log.Println("Waiting for device reconnect...")
		}
	}
	return nil
}

// tryGetDeviceWithTimeout attempts to get and open a Stream Deck with a
// timeout, since USB probing can hang when the subsystem is in a bad state.
func tryGetDeviceWithTimeout(timeout time.Duration) *streamdeck.Device {
	type result struct {
		dev *streamdeck.Device
		err error
	}
	ch := make(chan result, 1)

	go func() {
		dev, err := streamdeck.GetDevice("")
		if err != nil {
			ch <- result{nil, err}
			return
		}
		if err := dev.Open(); err != nil {
			ch <- result{nil, err}
			return
		}
		ch <- result{dev, nil}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil
		}
		return r.dev
	case <-time.After(timeout):
		log.Println("Device detection timed out")
		return nil
	}
}

// waitForHardwareDevice polls until a Stream Deck is available. Returns nil
// when the context is cancelled.
func waitForHardwareDevice(ctx context.Context) device.Device {
	const deviceTimeout = 5 * time.Second

	if dev := tryGetDeviceWithTimeout(deviceTimeout); dev != nil {
		return device.NewHardware(dev)
	}

	log.Println("Waiting for device...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}

		if dev := tryGetDeviceWithTimeout(deviceTimeout); dev != nil {
			log.Println("Device connected!")
			return device.NewHardware(dev)
		}
	}
}

// bindActions wires the key layout:
//
//	[prev] [play/pause] [next]  [shuffle]
//	[vol-] [vol+]       [repeat][device]
//
// plus the now-playing touch strip and the volume dial.
func bindActions(reg *registry.Registry, ctrl *spotify.Controller, cfg *config.Config) {
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
}

// runWithDevice runs the registry against the device until disconnect or
// context cancel. Controller and actions are created fresh per connection.
func runWithDevice(ctx context.Context, cfg *config.Config, manager *auth.Manager, dev device.Device) {
	log.Printf("Connected to: %s", dev.GetModelName())

	dev.SetBrightness(byte(cfg.Deck.Brightness))
	dev.ForEachKey(func(key device.KeyID) error {
		return dev.ClearKey(key)
	})

	client := api.New(manager.Client())
	ctrl := spotify.New(client, time.Duration(cfg.Deck.PollSeconds)*time.Second)

	reg := registry.New(dev)
	bindActions(reg, ctrl, cfg)
	ctrl.OnUpdate(func(spotify.PlaybackState) {
		reg.Invalidate()
	})

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	ctrl.Start(runCtx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- reg.Start(runCtx)
	}()

	log.Println("Ready! Transport on top row, volume and modes below")

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-errChan:
		if err != nil {
			log.Printf("Device disconnected: %v", err)
		}
	}

	runCancel()

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

	// Pending USB I/O callbacks can fire after close with stale context
	// pointers, so let them drain first
	time.Sleep(200 * time.Millisecond)

	closeDone := make(chan struct{})
	go func() {
		dev.Close()
		close(closeDone)
	}()

	select {
	case <-ctx.Done():
		log.Println("Exiting...")
		os.Exit(0)
	case <-closeDone:
	case <-time.After(3 * time.Second):
		log.Println("Device close timed out")
	}
}
