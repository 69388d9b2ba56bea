// Package screenstate defines the UI state the detail screens persist and the
// dashboard reads back.
package screenstate

import (
	"context"
	"fmt"

	"github.com/jask/spotifydaily/internal/spotify"
)

// Persisted-state keys, one per screen.
const (
	KeyTopArtists = "topArtistsCollectionState"
	KeyTopTracks  = "topTracksCollectionState"
)

// Artists is the persisted state of the top-artists screen.
type Artists struct {
	TimeRange spotify.TimeRange `json:"artistsTimeRange"`
}

// Tracks is the persisted state of the top-tracks screen.
type Tracks struct {
	TimeRange spotify.TimeRange `json:"tracksTimeRange"`
}

// DataManager reads persisted values. Get reports false when key is absent.
type DataManager interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
}

// Writer stores persisted values.
type Writer interface {
	Put(ctx context.Context, key string, v any) error
}

// LoadArtists reads the top-artists state. A stored value with an unknown
// time range is reported as an error.
func LoadArtists(ctx context.Context, dm DataManager) (Artists, bool, error) {
	var s Artists
	ok, err := dm.Get(ctx, KeyTopArtists, &s)
	if err != nil || !ok {
		return Artists{}, false, err
	}
	if !s.TimeRange.Valid() {
		return Artists{}, false, fmt.Errorf("%s: invalid time range %q", KeyTopArtists, s.TimeRange)
	}
	return s, true, nil
}

// LoadTracks reads the top-tracks state.
func LoadTracks(ctx context.Context, dm DataManager) (Tracks, bool, error) {
	var s Tracks
	ok, err := dm.Get(ctx, KeyTopTracks, &s)
	if err != nil || !ok {
		return Tracks{}, false, err
	}
	if !s.TimeRange.Valid() {
		return Tracks{}, false, fmt.Errorf("%s: invalid time range %q", KeyTopTracks, s.TimeRange)
	}
	return s, true, nil
}

// SaveArtists persists the top-artists state.
func SaveArtists(ctx context.Context, w Writer, s Artists) error {
	if !s.TimeRange.Valid() {
		return fmt.Errorf("%s: invalid time range %q", KeyTopArtists, s.TimeRange)
	}
	return w.Put(ctx, KeyTopArtists, s)
}

// SaveTracks persists the top-tracks state.
func SaveTracks(ctx context.Context, w Writer, s Tracks) error {
	if !s.TimeRange.Valid() {
		return fmt.Errorf("%s: invalid time range %q", KeyTopTracks, s.TimeRange)
	}
	return w.Put(ctx, KeyTopTracks, s)
}
