// Package spotify maps deck interactions onto the Spotify Web API: a thin
// dispatcher for playback commands plus a centrally polled playback state
// that actions render from.
package spotify

import (
	"context"
	"log"
	"sync"
	"time"

	api "github.com/zmb3/spotify/v2"
)

// PlayerClient is the part of the Spotify Web API client the controller
// uses. *spotify.Client satisfies it; tests substitute a fake.
type PlayerClient interface {
	PlayerState(ctx context.Context, opts ...api.RequestOption) (*api.PlayerState, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Shuffle(ctx context.Context, shuffle bool) error
	Repeat(ctx context.Context, state string) error
	Volume(ctx context.Context, percent int) error
	PlayerDevices(ctx context.Context) ([]api.PlayerDevice, error)
	TransferPlayback(ctx context.Context, deviceID api.ID, play bool) error
}

// Controller dispatches playback commands and maintains the polled state.
type Controller struct {
	client   PlayerClient
	interval time.Duration

	mu        sync.RWMutex
	state     PlaybackState
	haveState bool
	listeners []func(PlaybackState)

	artCache artCache

	pollCancel context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a Controller polling at the given interval.
func New(client PlayerClient, interval time.Duration) *Controller {
	return &Controller{
		client:   client,
		interval: interval,
	}
}

// Start begins polling playback state in the background.
func (c *Controller) Start(ctx context.Context) {
	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel

	c.wg.Add(1)
	go c.poll(pollCtx)
}

// Stop shuts down the poll loop.
func (c *Controller) Stop() {
	if c.pollCancel != nil {
		c.pollCancel()
	}
	c.wg.Wait()
}

// OnUpdate registers a callback invoked with every new playback snapshot.
// Must be called before Start.
func (c *Controller) OnUpdate(fn func(PlaybackState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns the latest playback snapshot. The second return is false
// until the first successful poll.
func (c *Controller) State() (PlaybackState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.haveState
}

// poll fetches playback state periodically.
func (c *Controller) poll(ctx context.Context) {
	defer c.wg.Done()

	// Fetch immediately on start
	c.Refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Refresh fetches the player state once and fans the snapshot out.
func (c *Controller) Refresh(ctx context.Context) {
	ps, err := c.client.PlayerState(ctx)
	if err != nil {
		log.Printf("Playback state fetch error: %v", err)
		return
	}
	if ps == nil {
		return
	}
	c.setState(FromPlayerState(ps))
}

// setState stores a snapshot and notifies listeners.
func (c *Controller) setState(state PlaybackState) {
	c.mu.Lock()
	c.state = state
	c.haveState = true
	listeners := make([]func(PlaybackState), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// mutateState applies fn to the cached snapshot and notifies listeners.
// Used for optimistic updates after a successful command so keys re-render
// without waiting for the next poll.
func (c *Controller) mutateState(fn func(*PlaybackState)) {
	c.mu.Lock()
	if !c.haveState {
		c.mu.Unlock()
		return
	}
	fn(&c.state)
	state := c.state
	listeners := make([]func(PlaybackState), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// TogglePlay pauses when playing and resumes when paused. The direction is
// decided from the polled snapshot, falling back to a live state fetch when
// no poll has succeeded yet.
func (c *Controller) TogglePlay(ctx context.Context) error {
	state, ok := c.State()
	if !ok {
		ps, err := c.client.PlayerState(ctx)
		if err != nil {
			return commandErr(err)
		}
		if ps != nil {
			state = FromPlayerState(ps)
			c.setState(state)
		}
	}

	var err error
	if state.Playing {
		err = c.client.Pause(ctx)
	} else {
		err = c.client.Play(ctx)
	}
	if err != nil {
		return commandErr(err)
	}

	c.mutateState(func(s *PlaybackState) { s.Playing = !state.Playing })
	return nil
}

// Next skips to the next track.
func (c *Controller) Next(ctx context.Context) error {
	return commandErr(c.client.Next(ctx))
}

// Previous skips to the previous track.
func (c *Controller) Previous(ctx context.Context) error {
	return commandErr(c.client.Previous(ctx))
}

// ToggleShuffle flips shuffle mode and returns the new state.
func (c *Controller) ToggleShuffle(ctx context.Context) (bool, error) {
	state, _ := c.State()
	target := !state.Shuffle

	if err := c.client.Shuffle(ctx, target); err != nil {
		return state.Shuffle, commandErr(err)
	}

	c.mutateState(func(s *PlaybackState) { s.Shuffle = target })
	return target, nil
}

// CycleRepeat advances repeat mode off -> track -> context -> off and
// returns the new mode.
func (c *Controller) CycleRepeat(ctx context.Context) (string, error) {
	state, _ := c.State()

	var target string
	switch state.Repeat {
	case RepeatOff:
		target = RepeatTrack
	case RepeatTrack:
		target = RepeatContext
	default:
		target = RepeatOff
	}

	if err := c.client.Repeat(ctx, target); err != nil {
		return state.Repeat, commandErr(err)
	}

	c.mutateState(func(s *PlaybackState) { s.Repeat = target })
	return target, nil
}

// StepVolume adjusts the volume by delta percent, clamped to [0, 100], and
// returns the volume that was set.
func (c *Controller) StepVolume(ctx context.Context, delta int) (int, error) {
	state, ok := c.State()
	if !ok {
		ps, err := c.client.PlayerState(ctx)
		if err != nil {
			return 0, commandErr(err)
		}
		if ps != nil {
			state = FromPlayerState(ps)
			c.setState(state)
		}
	}

	target := state.Volume + delta
	if target < 0 {
		target = 0
	}
	if target > 100 {
		target = 100
	}

	if err := c.client.Volume(ctx, target); err != nil {
		return state.Volume, commandErr(err)
	}

	c.mutateState(func(s *PlaybackState) { s.Volume = target })
	return target, nil
}

// NextDevice transfers playback to the device after the currently active
// one, cycling through the available devices. Returns the name of the
// device that playback moved to.
func (c *Controller) NextDevice(ctx context.Context) (string, error) {
	devices, err := c.client.PlayerDevices(ctx)
	if err != nil {
		return "", commandErr(err)
	}
	if len(devices) == 0 {
		return "", ErrNoActiveDevice
	}

	active := 0
	for i, d := range devices {
		if d.Active {
			active = i
			break
		}
	}
	target := devices[(active+1)%len(devices)]

	state, _ := c.State()
	if err := c.client.TransferPlayback(ctx, target.ID, state.Playing); err != nil {
		return "", commandErr(err)
	}

	c.mutateState(func(s *PlaybackState) { s.DeviceName = target.Name })
	return target.Name, nil
}
