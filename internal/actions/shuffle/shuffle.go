// Package shuffle implements the shuffle toggle key.
package shuffle

import (
	"context"
	"image"
	"time"

	"github.com/bamarc/SpotifyForStreamController/internal/action"
	"github.com/bamarc/SpotifyForStreamController/internal/render"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

// Action toggles shuffle mode. The glyph lights up green while shuffle is on.
type Action struct {
	action.Base
	ctrl *spotify.Controller
}

// New creates the shuffle action.
func New(ctrl *spotify.Controller) *Action {
	return &Action{
		Base: action.NewBase("shuffle"),
		ctrl: ctrl,
	}
}

// Render draws the shuffle glyph, green when active.
func (a *Action) Render(bounds image.Rectangle) image.Image {
	state, _ := a.ctrl.State()
	glyphColor := render.ColorGray
	if state.Shuffle {
		glyphColor = render.ColorGreen
	}
	return render.GlyphKey(bounds, render.IconShuffle, glyphColor, 0.5)
}

// OnKeyUp flips shuffle.
func (a *Action) OnKeyUp(held time.Duration) error {
	ctx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
	defer cancel()

	if _, err := a.ctrl.ToggleShuffle(ctx); err != nil {
		spotify.ReportCommandError("Shuffle", err)
	}
	return nil
}
