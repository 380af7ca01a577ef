package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	api "github.com/zmb3/spotify/v2"
)

// recordedRequest captures what the Web API client put on the wire.
type recordedRequest struct {
	method string
	path   string
	query  string
}

// newWireController points a real Web API client at a stub server so the
// tests verify the actual requests each command produces.
func newWireController(t *testing.T, status int, body string) (*Controller, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
		})
		w.WriteHeader(status)
		if body != "" {
			w.Write([]byte(body))
		}
	}))
	t.Cleanup(srv.Close)

	client := api.New(srv.Client(), api.WithBaseURL(srv.URL+"/"))
	return New(client, 0), &requests
}

func TestWirePlayPause(t *testing.T) {
	ctrl, requests := newWireController(t, http.StatusNoContent, "")
	ctrl.setState(PlaybackState{Playing: true})

	require.NoError(t, ctrl.TogglePlay(context.Background()))
	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodPut, (*requests)[0].method)
	assert.Equal(t, "/me/player/pause", (*requests)[0].path)

	require.NoError(t, ctrl.TogglePlay(context.Background()))
	require.Len(t, *requests, 2)
	assert.Equal(t, http.MethodPut, (*requests)[1].method)
	assert.Equal(t, "/me/player/play", (*requests)[1].path)
}

func TestWireSkip(t *testing.T) {
	ctrl, requests := newWireController(t, http.StatusNoContent, "")

	require.NoError(t, ctrl.Next(context.Background()))
	require.NoError(t, ctrl.Previous(context.Background()))

	require.Len(t, *requests, 2)
	assert.Equal(t, http.MethodPost, (*requests)[0].method)
	assert.Equal(t, "/me/player/next", (*requests)[0].path)
	assert.Equal(t, http.MethodPost, (*requests)[1].method)
	assert.Equal(t, "/me/player/previous", (*requests)[1].path)
}

func TestWireShuffle(t *testing.T) {
	ctrl, requests := newWireController(t, http.StatusNoContent, "")
	ctrl.setState(PlaybackState{Shuffle: false})

	_, err := ctrl.ToggleShuffle(context.Background())
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodPut, (*requests)[0].method)
	assert.Equal(t, "/me/player/shuffle", (*requests)[0].path)
	assert.Equal(t, "state=true", (*requests)[0].query)
}

func TestWireRepeat(t *testing.T) {
	ctrl, requests := newWireController(t, http.StatusNoContent, "")
	ctrl.setState(PlaybackState{Repeat: RepeatOff})

	_, err := ctrl.CycleRepeat(context.Background())
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodPut, (*requests)[0].method)
	assert.Equal(t, "/me/player/repeat", (*requests)[0].path)
	assert.Equal(t, "state=track", (*requests)[0].query)
}

func TestWireVolume(t *testing.T) {
	ctrl, requests := newWireController(t, http.StatusNoContent, "")
	ctrl.setState(PlaybackState{Volume: 50})

	_, err := ctrl.StepVolume(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodPut, (*requests)[0].method)
	assert.Equal(t, "/me/player/volume", (*requests)[0].path)
	assert.Equal(t, "volume_percent=55", (*requests)[0].query)
}

const premiumRequiredBody = `{"error":{"status":403,"message":"Player command failed: Premium required"}}`

func TestWirePremiumRequired(t *testing.T) {
	ctrl, _ := newWireController(t, http.StatusForbidden, premiumRequiredBody)

	err := ctrl.Next(context.Background())
	assert.ErrorIs(t, err, ErrPremiumRequired)
	assert.NotErrorIs(t, err, ErrNoActiveDevice)
}

const noDeviceBody = `{"error":{"status":404,"message":"Player command failed: No active device found"}}`

func TestWireNoActiveDevice(t *testing.T) {
	ctrl, _ := newWireController(t, http.StatusNotFound, noDeviceBody)

	err := ctrl.Next(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveDevice)
}

func TestWireGenericFailureStaysGeneric(t *testing.T) {
	ctrl, _ := newWireController(t, http.StatusInternalServerError,
		`{"error":{"status":500,"message":"server error"}}`)

	err := ctrl.Next(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPremiumRequired)
	assert.NotErrorIs(t, err, ErrNoActiveDevice)
}

func TestCommandErrWrapsAPIError(t *testing.T) {
	apiErr := api.Error{Status: http.StatusForbidden, Message: "Premium required"}

	err := commandErr(apiErr)
	assert.ErrorIs(t, err, ErrPremiumRequired)

	wrapped := commandErr(errors.Wrap(apiErr, "sending command"))
	assert.ErrorIs(t, wrapped, ErrPremiumRequired)

	assert.NoError(t, commandErr(nil))
}
