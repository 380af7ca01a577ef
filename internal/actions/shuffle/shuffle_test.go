package shuffle

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	api "github.com/zmb3/spotify/v2"

	"github.com/bamarc/SpotifyForStreamController/internal/render"
	"github.com/bamarc/SpotifyForStreamController/internal/spotify"
)

// stubPlayer serves a fixed player state and records the shuffle command.
type stubPlayer struct {
	state      *api.PlayerState
	shuffleArg *bool
}

func (s *stubPlayer) PlayerState(ctx context.Context, opts ...api.RequestOption) (*api.PlayerState, error) {
	return s.state, nil
}
func (s *stubPlayer) Play(ctx context.Context) error     { return nil }
func (s *stubPlayer) Pause(ctx context.Context) error    { return nil }
func (s *stubPlayer) Next(ctx context.Context) error     { return nil }
func (s *stubPlayer) Previous(ctx context.Context) error { return nil }
func (s *stubPlayer) Shuffle(ctx context.Context, shuffle bool) error {
	s.shuffleArg = &shuffle
	return nil
}
func (s *stubPlayer) Repeat(ctx context.Context, state string) error { return nil }
func (s *stubPlayer) Volume(ctx context.Context, percent int) error  { return nil }
func (s *stubPlayer) PlayerDevices(ctx context.Context) ([]api.PlayerDevice, error) {
	return nil, nil
}
func (s *stubPlayer) TransferPlayback(ctx context.Context, deviceID api.ID, play bool) error {
	return nil
}

func newController(shuffleOn bool) (*spotify.Controller, *stubPlayer) {
	ps := &api.PlayerState{ShuffleState: shuffleOn}
	player := &stubPlayer{state: ps}
	ctrl := spotify.New(player, 0)
	ctrl.Refresh(context.Background())
	return ctrl, player
}

func TestRenderReflectsShuffleState(t *testing.T) {
	bounds := image.Rect(0, 0, 72, 72)

	ctrlOff, _ := newController(false)
	actOff := New(ctrlOff)
	imgOff := actOff.Render(bounds).(*image.RGBA)

	ctrlOn, _ := newController(true)
	actOn := New(ctrlOn)
	imgOn := actOn.Render(bounds).(*image.RGBA)

	// Active shuffle renders the Spotify-green glyph, inactive stays gray
	assert.True(t, containsColor(imgOn, render.ColorGreen))
	assert.False(t, containsColor(imgOff, render.ColorGreen))
}

func TestKeyPressTogglesShuffle(t *testing.T) {
	ctrl, player := newController(false)
	act := New(ctrl)
	require.NoError(t, act.Init(context.Background()))

	require.NoError(t, act.OnKeyUp(0))
	require.NotNil(t, player.shuffleArg)
	assert.True(t, *player.shuffleArg)
}

func containsColor(img *image.RGBA, want color.Color) bool {
	wr, wg, wb, _ := want.RGBA()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			if r == wr && g == wg && bb == wb {
				return true
			}
		}
	}
	return false
}
