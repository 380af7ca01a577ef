// Package playback implements the play/pause key. The key shows the current
// album art with a play or pause glyph overlaid.
package playback

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"github.com/bamarc/SpotifyForStreamController/internal/action"
	"github.com/bamarc/SpotifyForStreamController/internal/render"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

// Action toggles playback and renders the play/pause key.
type Action struct {
	action.Base
	ctrl *spotify.Controller

	mu       sync.Mutex
	artURL   string
	art      image.Image
	fetching bool
}

// New creates the play/pause action.
func New(ctrl *spotify.Controller) *Action {
	return &Action{
		Base: action.NewBase("playback"),
		ctrl: ctrl,
	}
}

// Render draws the key: cover art when available, with a glyph showing the
// action a press would take (pause while playing, play while paused).
func (a *Action) Render(bounds image.Rectangle) image.Image {
	state, ok := a.ctrl.State()

	icon := render.IconPlay
	if state.Playing {
		icon = render.IconPause
	}

	glyphColor := render.ColorWhite
	if !ok {
		glyphColor = render.ColorGray
	}

	if art := a.artFor(state.Track.ArtURL); art != nil {
		img := render.CoverKey(bounds, art)
		render.CompositeGlyph(img, icon, glyphColor, 0.45)
		return img
	}

	return render.GlyphKey(bounds, icon, glyphColor, 0.5)
}

// artFor returns the cached cover for url, kicking off a background fetch
// when the track changed. Returns nil until the fetch completes.
func (a *Action) artFor(url string) image.Image {
	if url == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if url == a.artURL {
		return a.art
	}
	if a.fetching {
		return nil
	}
	a.fetching = true

	go func() {
		ctx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
		defer cancel()

		img, err := a.ctrl.Artwork(ctx, url)

		a.mu.Lock()
		a.fetching = false
		if err != nil {
			log.Printf("Cover art fetch failed: %v", err)
		} else {
			a.artURL = url
			a.art = img
		}
		a.mu.Unlock()
	}()

	return nil
}

// OnKeyUp toggles playback.
func (a *Action) OnKeyUp(held time.Duration) error {
	ctx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
	defer cancel()

	if err := a.ctrl.TogglePlay(ctx); err != nil {
		spotify.ReportCommandError("Play/pause", err)
	}
	return nil
}
