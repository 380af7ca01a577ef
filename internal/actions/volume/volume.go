// Package volume implements the volume step keys and the volume dial.
package volume

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/font"

	"github.com/bamarc/SpotifyForStreamController/internal/action"
	"github.com/bamarc/SpotifyForStreamController/internal/render"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

// Action steps the volume up or down by a fixed percentage per press.
type Action struct {
	action.Base
	ctrl *spotify.Controller
	step int

	face font.Face
}

// NewUp creates a volume-up action stepping by step percent.
func NewUp(ctrl *spotify.Controller, step int) *Action {
	return &Action{
		Base: action.NewBase("volume-up"),
		ctrl: ctrl,
		step: step,
	}
}

// NewDown creates a volume-down action stepping by step percent.
func NewDown(ctrl *spotify.Controller, step int) *Action {
	return &Action{
		Base: action.NewBase("volume-down"),
		ctrl: ctrl,
		step: -step,
	}
}

// Init prepares the label font.
func (a *Action) Init(ctx context.Context) error {
	if err := a.Base.Init(ctx); err != nil {
		return err
	}
	face, err := render.Face(14, false)
	if err != nil {
		return err
	}
	a.face = face
	return nil
}

// Render draws the step glyph with the current volume percentage below it.
func (a *Action) Render(bounds image.Rectangle) image.Image {
	icon := render.IconVolumeUp
	if a.step < 0 {
		icon = render.IconVolumeDown
	}

	img := render.KeyBackground(bounds)
	render.CompositeGlyph(img, icon, render.ColorWhite, 0.45)

	if state, ok := a.ctrl.State(); ok {
		label := fmt.Sprintf("%d%%", state.Volume)
		x := bounds.Min.X + (bounds.Dx()-render.TextWidth(a.face, label))/2
		render.DrawText(img, label, x, bounds.Max.Y-8, a.face, render.ColorGray)
	}
	return img
}

// OnKeyUp applies the step.
func (a *Action) OnKeyUp(held time.Duration) error {
	ctx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
	defer cancel()

	if _, err := a.ctrl.StepVolume(ctx, a.step); err != nil {
		spotify.ReportCommandError("Volume", err)
	}
	return nil
}

// Dial maps a rotary dial onto volume: rotation steps the volume, pressing
// the dial toggles playback.
type Dial struct {
	action.Base
	ctrl *spotify.Controller
	step int
}

// NewDial creates the volume dial binding stepping by step percent per detent.
func NewDial(ctrl *spotify.Controller, step int) *Dial {
	return &Dial{
		Base: action.NewBase("volume-dial"),
		ctrl: ctrl,
		step: step,
	}
}

// OnDialRotate steps the volume proportionally to the rotation.
func (d *Dial) OnDialRotate(delta int8) error {
	ctx, cancel := context.WithTimeout(d.Context(), 10*time.Second)
	defer cancel()

	if _, err := d.ctrl.StepVolume(ctx, int(delta)*d.step); err != nil {
		spotify.ReportCommandError("Volume dial", err)
	}
	return nil
}

// OnDialPress toggles playback.
func (d *Dial) OnDialPress() error {
	ctx, cancel := context.WithTimeout(d.Context(), 10*time.Second)
	defer cancel()

	if err := d.ctrl.TogglePlay(ctx); err != nil {
		spotify.ReportCommandError("Play/pause", err)
	}
	return nil
}
