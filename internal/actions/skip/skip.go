// Package skip implements the next-track and previous-track keys.
package skip

import (
	"context"
	"image"
	"time"

	"github.com/bamarc/SpotifyForStreamController/internal/action"
	"github.com/bamarc/SpotifyForStreamController/internal/render"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

// Direction selects which way a skip key moves through the queue.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Action skips to the next or previous track.
type Action struct {
	action.Base
	ctrl *spotify.Controller
	dir  Direction
}

// NewNext creates the next-track action.
func NewNext(ctrl *spotify.Controller) *Action {
	return &Action{
		Base: action.NewBase("skip-next"),
		ctrl: ctrl,
		dir:  Forward,
	}
}

// NewPrevious creates the previous-track action.
func NewPrevious(ctrl *spotify.Controller) *Action {
	return &Action{
		Base: action.NewBase("skip-previous"),
		ctrl: ctrl,
		dir:  Backward,
	}
}

// Render draws the skip glyph.
func (a *Action) Render(bounds image.Rectangle) image.Image {
	icon := render.IconNext
	if a.dir == Backward {
		icon = render.IconPrevious
	}
	return render.GlyphKey(bounds, icon, render.ColorWhite, 0.5)
}

// OnKeyUp issues the skip and refreshes state so the new track shows up
// before the next poll.
func (a *Action) OnKeyUp(held time.Duration) error {
	ctx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
	defer cancel()

	var err error
	op := "Next track"
	if a.dir == Backward {
		op = "Previous track"
		err = a.ctrl.Previous(ctx)
	} else {
		err = a.ctrl.Next(ctx)
	}
	if err != nil {
		spotify.ReportCommandError(op, err)
		return nil
	}

	// Spotify needs a moment before the player state reflects the skip
	go func() {
		time.Sleep(300 * time.Millisecond)
		refreshCtx, cancel := context.WithTimeout(a.Context(), 10*time.Second)
		defer cancel()
		a.ctrl.Refresh(refreshCtx)
	}()
	return nil
}
