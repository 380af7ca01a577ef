// Package nowplaying renders the touch strip: album art, track metadata,
// and a progress bar. Tapping the strip toggles playback.
package nowplaying

import (
	"context"
	"image"
	"image/color"
	"log"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/bamarc/SpotifyForStreamController/internal/action"
	"github.com/bamarc/SpotifyForStreamController/internal/render"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

// Action draws the now-playing strip.
type Action struct {
	action.Base
	ctrl *spotify.Controller

	titleFace  font.Face
	detailFace font.Face

	mu       sync.Mutex
	artURL   string
	art      image.Image
	fetching bool
}

// New creates the now-playing strip action.
func New(ctrl *spotify.Controller) *Action {
	return &Action{
		Base: action.NewBase("nowplaying"),
		ctrl: ctrl,
	}
}

// Init prepares the strip fonts.
func (a *Action) Init(ctx context.Context) error {
	if err := a.Base.Init(ctx); err != nil {
		return err
	}

	titleFace, err := render.Face(22, true)
	if err != nil {
		return err
	}
	detailFace, err := render.Face(17, false)
	if err != nil {
		return err
	}
	a.titleFace = titleFace
	a.detailFace = detailFace
	return nil
}

// RenderStrip draws the strip layout: square album art on the left, title
// and artist beside it, progress bar along the bottom edge.
func (a *Action) RenderStrip(bounds image.Rectangle) image.Image {
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, &image.Uniform{render.ColorBackground}, image.Point{}, draw.Src)

	state, ok := a.ctrl.State()
	if !ok || state.Track.Title == "" {
		msg := "Nothing playing"
		x := bounds.Min.X + (bounds.Dx()-render.TextWidth(a.detailFace, msg))/2
		y := bounds.Min.Y + bounds.Dy()/2
		render.DrawText(img, msg, x, y, a.detailFace, render.ColorGray)
		return img
	}

	h := bounds.Dy()
	textX := bounds.Min.X + 16

	if art := a.artFor(state.Track.ArtURL); art != nil {
		pad := 8
		side := h - 2*pad
		scaled := render.ScaleSquare(art, side)
		target := image.Rect(bounds.Min.X+pad, bounds.Min.Y+pad,
			bounds.Min.X+pad+side, bounds.Min.Y+pad+side)
		draw.Draw(img, target, scaled, image.Point{}, draw.Src)
		textX = target.Max.X + 14
	}

	maxWidth := bounds.Max.X - textX - 12

	title := render.TruncateToWidth(a.titleFace, state.Track.Title, maxWidth)
	render.DrawText(img, title, textX, bounds.Min.Y+h/2-6, a.titleFace, render.ColorWhite)

	artist := render.TruncateToWidth(a.detailFace, state.Track.Artist, maxWidth)
	render.DrawText(img, artist, textX, bounds.Min.Y+h/2+20, a.detailFace, render.ColorGray)

	a.drawProgress(img, bounds, state)
	return img
}

// drawProgress draws the playback position bar along the bottom edge.
func (a *Action) drawProgress(img *image.RGBA, bounds image.Rectangle, state spotify.PlaybackState) {
	if state.Duration <= 0 {
		return
	}

	const barHeight = 4
	barRect := image.Rect(bounds.Min.X, bounds.Max.Y-barHeight, bounds.Max.X, bounds.Max.Y)
	draw.Draw(img, barRect, &image.Uniform{color.RGBA{70, 70, 70, 255}}, image.Point{}, draw.Src)

	frac := float64(state.Progress) / float64(state.Duration)
	if frac > 1 {
		frac = 1
	}
	fillRect := barRect
	fillRect.Max.X = barRect.Min.X + int(float64(barRect.Dx())*frac)
	draw.Draw(img, fillRect, &image.Uniform{render.ColorGreen}, image.Point{}, draw.Src)
}

// artFor returns the cached cover for url, fetching in the background when
// the track changed.
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

// OnStripTap toggles playback.
func (a *Action) OnStripTap(p image.Point) error {
	ctx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
	defer cancel()

	if err := a.ctrl.TogglePlay(ctx); err != nil {
		spotify.ReportCommandError("Play/pause", err)
	}
	return nil
}
