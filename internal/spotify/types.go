// Package spotify is a read-only client for the Spotify Web API listening endpoints.
package spotify

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange selects the aggregation window for top-items queries.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// TimeRanges lists every window, shortest first.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// ParseTimeRange accepts the API value or a short alias ("short", "4w", ...).
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short_term", "short", "4w":
		return ShortTerm, nil
	case "medium_term", "medium", "6m":
		return MediumTerm, nil
	case "long_term", "long", "all":
		return LongTerm, nil
	}
	return "", fmt.Errorf("unknown time range %q", s)
}

// Valid reports whether r is one of the known windows.
func (r TimeRange) Valid() bool {
	for _, tr := range TimeRanges {
		if tr == r {
			return true
		}
	}
	return false
}

// Label is the human name shown in the UI.
func (r TimeRange) Label() string {
	switch r {
	case ShortTerm:
		return "Last 4 weeks"
	case MediumTerm:
		return "Last 6 months"
	case LongTerm:
		return "All time"
	}
	return string(r)
}

// Next cycles to the following window, wrapping around.
func (r TimeRange) Next() TimeRange {
	for i, tr := range TimeRanges {
		if tr == r {
			return TimeRanges[(i+1)%len(TimeRanges)]
		}
	}
	return MediumTerm
}

// Image is a cover or portrait at one resolution.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalURLs holds the public links of an object.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Artist is a full artist object.
type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Genres       []string     `json:"genres"`
	Popularity   int          `json:"popularity"`
	Images       []Image      `json:"images"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	Followers    struct {
		Total int `json:"total"`
	} `json:"followers"`
}

// ExternalURL is the artist's public page.
func (a Artist) ExternalURL() string { return a.ExternalURLs.Spotify }

// SimpleArtist is the artist reference embedded in tracks.
type SimpleArtist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Album is the album reference embedded in tracks.
type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is a full track object.
type Track struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	DurationMs   int            `json:"duration_ms"`
	Popularity   int            `json:"popularity"`
	Explicit     bool           `json:"explicit"`
	Album        Album          `json:"album"`
	Artists      []SimpleArtist `json:"artists"`
	ExternalURLs ExternalURLs   `json:"external_urls"`
}

// ExternalURL is the track's public page.
func (t Track) ExternalURL() string { return t.ExternalURLs.Spotify }

// ArtistNames joins the credited artists.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Duration converts DurationMs.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// RecentlyPlayedTrack is one entry of the play history.
type RecentlyPlayedTrack struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

// ExternalURL is the played track's public page.
func (r RecentlyPlayedTrack) ExternalURL() string { return r.Track.ExternalURL() }

type paging[T any] struct {
	Items []T     `json:"items"`
	Total int     `json:"total"`
	Next  *string `json:"next"`
}
