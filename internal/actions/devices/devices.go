// Package devices implements the playback-device cycle key. Each press
// transfers playback to the next available Spotify Connect device.
package devices

import (
	"context"
	"image"
	"time"

	"golang.org/x/image/font"

	"github.com/bamarc/SpotifyForStreamController/internal/action"
	"github.com/bamarc/SpotifyForStreamController/internal/render"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

// Action cycles playback between Spotify Connect devices.
type Action struct {
	action.Base
	ctrl *spotify.Controller

	face font.Face
}

// New creates the device cycle action.
func New(ctrl *spotify.Controller) *Action {
	return &Action{
		Base: action.NewBase("devices"),
		ctrl: ctrl,
	}
}

// Init prepares the label font.
func (a *Action) Init(ctx context.Context) error {
	if err := a.Base.Init(ctx); err != nil {
		return err
	}
	face, err := render.Face(12, false)
	if err != nil {
		return err
	}
	a.face = face
	return nil
}

// Render draws a speaker glyph with the active device name below it.
func (a *Action) Render(bounds image.Rectangle) image.Image {
	img := render.KeyBackground(bounds)
	render.CompositeGlyph(img, render.IconSpeaker, render.ColorWhite, 0.4)

	if state, ok := a.ctrl.State(); ok && state.DeviceName != "" {
		label := render.TruncateToWidth(a.face, state.DeviceName, bounds.Dx()-8)
		x := bounds.Min.X + (bounds.Dx()-render.TextWidth(a.face, label))/2
		render.DrawText(img, label, x, bounds.Max.Y-8, a.face, render.ColorGray)
	}
	return img
}

// OnKeyUp transfers playback to the next device.
func (a *Action) OnKeyUp(held time.Duration) error {
	ctx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
	defer cancel()

	if _, err := a.ctrl.NextDevice(ctx); err != nil {
		spotify.ReportCommandError("Device switch", err)
	}
	return nil
}
