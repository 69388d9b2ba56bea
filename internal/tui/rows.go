package tui

import (
	"context"
	"fmt"

	"github.com/jask/spotifydaily/internal/browser"
	"github.com/jask/spotifydaily/internal/dashboard"
	"github.com/jask/spotifydaily/internal/spotify"
)

func (a *App) artistRows(cells []dashboard.ArtistCell) []row {
	rows := make([]row, len(cells))
	for i, c := range cells {
		artist := c.Artist
		rows[i] = row{
			title:    c.Name,
			subtitle: c.Genres,
			meta:     fmt.Sprintf("pop %d", c.Popularity),
			open:     func(from browser.Origin) { a.state.ArtistSelected(from, artist) },
		}
	}
	return rows
}

func (a *App) trackRows(cells []dashboard.TrackCell) []row {
	rows := make([]row, len(cells))
	for i, c := range cells {
		track := c.Track
		rows[i] = row{
			title:    c.Title,
			subtitle: c.Artists,
			meta:     c.Duration,
			open:     func(from browser.Origin) { a.state.TrackSelected(from, track) },
		}
	}
	return rows
}

func (a *App) recentRows(cells []dashboard.RecentCell) []row {
	now := a.now()
	rows := make([]row, len(cells))
	for i, c := range cells {
		play := c.Play
		rows[i] = row{
			title:    c.Title,
			subtitle: c.Artists,
			meta:     c.PlayedAgo(now),
			open:     func(from browser.Origin) { a.state.RecentTrackSelected(from, play) },
		}
	}
	return rows
}

// fetchDetail queries one detail screen's items and maps them to rows.
func (a *App) fetchDetail(ctx context.Context, kind detailKind, tr spotify.TimeRange) ([]row, error) {
	switch kind {
	case detailArtists:
		items, err := a.session.GetTopArtists(ctx, tr, a.detailLimit)
		if err != nil {
			return nil, err
		}
		cells := make([]dashboard.ArtistCell, len(items))
		for i, it := range items {
			cells[i] = dashboard.NewArtistCell(it)
		}
		return a.artistRows(cells), nil
	case detailTracks:
		items, err := a.session.GetTopTracks(ctx, tr, a.detailLimit)
		if err != nil {
			return nil, err
		}
		cells := make([]dashboard.TrackCell, len(items))
		for i, it := range items {
			cells[i] = dashboard.NewTrackCell(it)
		}
		return a.trackRows(cells), nil
	}
	items, err := a.session.GetRecentlyPlayedTracks(ctx, a.detailLimit)
	if err != nil {
		return nil, err
	}
	cells := make([]dashboard.RecentCell, len(items))
	for i, it := range items {
		cells[i] = dashboard.NewRecentCell(it)
	}
	return a.recentRows(cells), nil
}
