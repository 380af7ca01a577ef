package spotify

import (
	"log"
	"net/http"

	"github.com/pkg/errors"
	api "github.com/zmb3/spotify/v2"
)

// Sentinel errors for the failure classes the deck reports distinctly.
var (
	// ErrPremiumRequired means the account cannot use playback control
	// endpoints. Spotify answers 403 to player commands on free accounts.
	ErrPremiumRequired = errors.New("spotify: playback control requires a Premium account")

	// ErrNoActiveDevice means no Spotify client is currently available to
	// receive playback commands. Spotify answers 404 on player endpoints.
	ErrNoActiveDevice = errors.New("spotify: no active playback device")
)

// commandErr maps Web API failures on player command endpoints onto the
// deck's sentinel errors. Other errors pass through unchanged.
func commandErr(err error) error {
	if err == nil {
		return nil
	}

	var apiErr api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusForbidden:
			return errors.Wrap(ErrPremiumRequired, apiErr.Message)
		case http.StatusNotFound:
			return errors.Wrap(ErrNoActiveDevice, apiErr.Message)
		}
	}
	return err
}

// ReportCommandError logs a player command failure, calling out the
// account-capability and no-device cases distinctly from generic failures.
func ReportCommandError(op string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrPremiumRequired):
		log.Printf("%s: Spotify Premium is required for playback control", op)
	case errors.Is(err, ErrNoActiveDevice):
		log.Printf("%s: no active Spotify device; start playback somewhere first", op)
	default:
		log.Printf("%s failed: %v", op, err)
	}
}
