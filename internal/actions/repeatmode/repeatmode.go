// Package repeatmode implements the repeat cycle key. Each press advances
// repeat off -> track -> context -> off.
package repeatmode

import (
	"context"
	"image"
	"time"

	"github.com/bamarc/SpotifyForStreamController/internal/action"
	"github.com/bamarc/SpotifyForStreamController/internal/render"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

// Action cycles repeat mode.
type Action struct {
	action.Base
	ctrl *spotify.Controller
}

// New creates the repeat action.
func New(ctrl *spotify.Controller) *Action {
	return &Action{
		Base: action.NewBase("repeat"),
		ctrl: ctrl,
	}
}

// Render draws the repeat glyph: gray when off, green for context repeat,
// and the "1" variant for track repeat.
func (a *Action) Render(bounds image.Rectangle) image.Image {
	state, _ := a.ctrl.State()

	icon := render.IconRepeat
	glyphColor := render.ColorGray
	switch state.Repeat {
	case spotify.RepeatTrack:
		icon = render.IconRepeatOne
		glyphColor = render.ColorGreen
	case spotify.RepeatContext:
		glyphColor = render.ColorGreen
	}
	return render.GlyphKey(bounds, icon, glyphColor, 0.5)
}

// OnKeyUp advances the repeat mode.
func (a *Action) OnKeyUp(held time.Duration) error {
	ctx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
	defer cancel()

	if _, err := a.ctrl.CycleRepeat(ctx); err != nil {
		spotify.ReportCommandError("Repeat", err)
	}
	return nil
}
