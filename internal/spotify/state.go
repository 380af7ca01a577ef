package spotify

import (
	"strings"
	"time"

	api "github.com/zmb3/spotify/v2"
)

// Repeat states as the Web API names them.
const (
	RepeatOff     = "off"
	RepeatTrack   = "track"
	RepeatContext = "context"
)

// Track is the slice of track metadata the deck renders.
type Track struct {
	Title  string
	Artist string
	Album  string
	ArtURL string
}

// PlaybackState is the snapshot of player state the deck renders from.
// It is fetched live from Spotify and cached only in memory between polls.
type PlaybackState struct {
	Playing    bool
	Shuffle    bool
	Repeat     string
	Volume     int
	DeviceName string
	Track      Track
	Progress   time.Duration
	Duration   time.Duration
}

// FromPlayerState converts the Web API player state into the deck snapshot.
func FromPlayerState(ps *api.PlayerState) PlaybackState {
	state := PlaybackState{
		Playing:    ps.Playing,
		Shuffle:    ps.ShuffleState,
		Repeat:     ps.RepeatState,
		Volume:     int(ps.Device.Volume),
		DeviceName: ps.Device.Name,
		Progress:   time.Duration(ps.Progress) * time.Millisecond,
	}
	if state.Repeat == "" {
		state.Repeat = RepeatOff
	}

	if ps.Item != nil {
		state.Duration = time.Duration(ps.Item.Duration) * time.Millisecond
		state.Track = Track{
			Title: ps.Item.Name,
			Album: ps.Item.Album.Name,
		}

		artists := make([]string, 0, len(ps.Item.Artists))
		for _, a := range ps.Item.Artists {
			artists = append(artists, a.Name)
		}
		state.Track.Artist = strings.Join(artists, ", ")

		if len(ps.Item.Album.Images) > 0 {
			state.Track.ArtURL = ps.Item.Album.Images[0].URL
		}
	}

	return state
}
