package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/jask/spotifydaily/internal/spotify"
)

// ArtistCell is the presentation model of one top artist.
type ArtistCell struct {
	Name       string
	Genres     string
	Popularity int
	Artist     spotify.Artist
}

// NewArtistCell maps an artist to its cell.
func NewArtistCell(a spotify.Artist) ArtistCell {
	genres := a.Genres
	if len(genres) > 2 {
		genres = genres[:2]
	}
	return ArtistCell{
		Name:       a.Name,
		Genres:     strings.Join(genres, ", "),
		Popularity: a.Popularity,
		Artist:     a,
	}
}

// TrackCell is the presentation model of one top track.
type TrackCell struct {
	Title    string
	Artists  string
	Album    string
	Duration string
	Track    spotify.Track
}

// NewTrackCell maps a track to its cell.
func NewTrackCell(t spotify.Track) TrackCell {
	return TrackCell{
		Title:    t.Name,
		Artists:  t.ArtistNames(),
		Album:    t.Album.Name,
		Duration: formatDuration(t.Duration()),
		Track:    t,
	}
}

// RecentCell is the presentation model of one play.
type RecentCell struct {
	Title    string
	Artists  string
	PlayedAt time.Time
	Play     spotify.RecentlyPlayedTrack
}

// NewRecentCell maps a play to its cell.
func NewRecentCell(r spotify.RecentlyPlayedTrack) RecentCell {
	return RecentCell{
		Title:    r.Track.Name,
		Artists:  r.Track.ArtistNames(),
		PlayedAt: r.PlayedAt,
		Play:     r,
	}
}

// PlayedAgo renders how long before now the track was played.
func (c RecentCell) PlayedAgo(now time.Time) string {
	d := now.Sub(c.PlayedAt)
	switch {
	case c.PlayedAt.IsZero():
		return ""
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
