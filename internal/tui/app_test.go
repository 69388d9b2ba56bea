package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/spotifydaily/internal/browser"
	"github.com/jask/spotifydaily/internal/dashboard"
	"github.com/jask/spotifydaily/internal/reactive"
	"github.com/jask/spotifydaily/internal/screenstate"
	"github.com/jask/spotifydaily/internal/spotify"
)

type fakeSession struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeSession) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSession) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSession) GetTopArtists(_ context.Context, tr spotify.TimeRange, limit int) ([]spotify.Artist, error) {
	f.record(fmt.Sprintf("artists(%s,%d)", tr, limit))
	out := make([]spotify.Artist, limit)
	for i := range out {
		out[i] = spotify.Artist{
			Name:         fmt.Sprintf("Artist %d %s", i, tr),
			Genres:       []string{"shoegaze"},
			ExternalURLs: spotify.ExternalURLs{Spotify: fmt.Sprintf("https://open.spotify.com/artist/%s%d", tr, i)},
		}
	}
	return out, nil
}

func (f *fakeSession) GetTopTracks(_ context.Context, tr spotify.TimeRange, limit int) ([]spotify.Track, error) {
	f.record(fmt.Sprintf("tracks(%s,%d)", tr, limit))
	out := make([]spotify.Track, limit)
	for i := range out {
		out[i] = spotify.Track{
			Name:         fmt.Sprintf("Track %d %s", i, tr),
			DurationMs:   185000,
			ExternalURLs: spotify.ExternalURLs{Spotify: fmt.Sprintf("https://open.spotify.com/track/%s%d", tr, i)},
		}
	}
	return out, nil
}

func (f *fakeSession) GetRecentlyPlayedTracks(_ context.Context, limit int) ([]spotify.RecentlyPlayedTrack, error) {
	f.record(fmt.Sprintf("recent(%d)", limit))
	out := make([]spotify.RecentlyPlayedTrack, limit)
	for i := range out {
		out[i] = spotify.RecentlyPlayedTrack{
			Track: spotify.Track{
				Name:         fmt.Sprintf("Recent %d", i),
				ExternalURLs: spotify.ExternalURLs{Spotify: fmt.Sprintf("https://open.spotify.com/track/r%d", i)},
			},
			PlayedAt: testNow.Add(-time.Duration(i+1) * time.Hour),
		}
	}
	return out, nil
}

type memStore struct {
	mu   sync.Mutex
	vals map[string]string
}

func (m *memStore) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.vals[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), dest)
}

func (m *memStore) Put(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = string(data)
	return nil
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	app     *App
	state   *dashboard.State
	session *fakeSession
	store   *memStore
	links   *browser.Recorder
}

func newHarness(t *testing.T, seed bool) *harness {
	t.Helper()
	ctx := context.Background()
	h := &harness{
		session: &fakeSession{},
		store:   &memStore{vals: map[string]string{}},
		links:   &browser.Recorder{},
	}
	if seed {
		require.NoError(t, screenstate.SaveArtists(ctx, h.store, screenstate.Artists{TimeRange: spotify.MediumTerm}))
		require.NoError(t, screenstate.SaveTracks(ctx, h.store, screenstate.Tracks{TimeRange: spotify.ShortTerm}))
	}
	h.state = dashboard.New(ctx, dashboard.Deps{Session: h.session, Data: h.store, Links: h.links},
		dashboard.WithExecutor(reactive.Inline))
	t.Cleanup(h.state.Close)
	h.app = New(ctx, Deps{
		State:       h.state,
		Session:     h.session,
		Screens:     h.store,
		DetailLimit: 5,
		Now:         func() time.Time { return testNow },
	})
	h.pump()
	return h
}

// pump feeds everything the state posted into the model, running any
// commands it returns.
func (h *harness) pump() {
	for {
		batch := h.app.box.drain()
		if len(batch) == 0 {
			return
		}
		for _, msg := range batch {
			_, cmd := h.app.Update(msg)
			h.run(cmd)
		}
	}
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(detailMsg); ok {
			h.app.Update(msg)
		}
	}
}

func (h *harness) press(k tea.KeyMsg) {
	_, cmd := h.app.Update(k)
	h.run(cmd)
	h.pump()
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func (h *harness) view() string { return ansi.Strip(h.app.View()) }

func TestDashboardRendersAllSections(t *testing.T) {
	h := newHarness(t, true)

	out := h.view()
	for _, want := range []string{
		"Top Artists", "Last 6 months", "Artist 0 medium_term", "Artist 1 medium_term",
		"Top Tracks", "Last 4 weeks", "Track 0 short_term", "3:05",
		"Recently Played", "Recent 0", "Recent 2", "1h ago",
	} {
		require.Contains(t, out, want)
	}
	require.ElementsMatch(t, []string{"artists(medium_term,2)", "tracks(short_term,2)", "recent(3)"}, h.session.Calls())
}

func TestDashboardOpenUsesCursorRow(t *testing.T) {
	h := newHarness(t, true)

	h.press(tea.KeyMsg{Type: tea.KeyDown})
	h.press(tea.KeyMsg{Type: tea.KeyDown})
	h.press(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, []browser.Call{{From: dashboardOrigin, URL: "https://open.spotify.com/track/short_term0"}}, h.links.Calls())
}

func TestCursorWraps(t *testing.T) {
	h := newHarness(t, true)

	h.press(tea.KeyMsg{Type: tea.KeyUp})
	require.Equal(t, 6, h.app.cursor)
	h.press(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 0, h.app.cursor)
}

func TestNavigatePushesDetailWithPersistedRange(t *testing.T) {
	h := newHarness(t, true)

	h.press(runes("a"))

	require.NotNil(t, h.app.detail)
	require.Equal(t, detailArtists, h.app.detail.kind)
	require.Equal(t, spotify.MediumTerm, h.app.detail.timeRange)
	require.Len(t, h.app.detail.visible, 5)
	require.Contains(t, h.session.Calls(), "artists(medium_term,5)")
	require.Contains(t, h.view(), "Artist 4 medium_term")
}

func TestDetailRangeCyclePersistsAndDashboardReloadsOnDismiss(t *testing.T) {
	h := newHarness(t, true)

	h.press(runes("t"))
	h.press(tea.KeyMsg{Type: tea.KeyTab})

	require.Equal(t, spotify.MediumTerm, h.app.detail.timeRange)
	saved, ok, err := screenstate.LoadTracks(context.Background(), h.store)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, spotify.MediumTerm, saved.TimeRange)
	require.Contains(t, h.view(), "Track 4 medium_term")

	before := len(h.session.Calls())
	h.press(tea.KeyMsg{Type: tea.KeyEsc})

	require.Nil(t, h.app.detail)
	after := h.session.Calls()[before:]
	require.ElementsMatch(t, []string{"artists(medium_term,2)", "tracks(medium_term,2)", "recent(3)"}, after)
	_, tracks := h.state.TimeRanges()
	require.Equal(t, spotify.MediumTerm, tracks)
	require.Contains(t, h.view(), "Track 0 medium_term")
}

func TestRecentlyPlayedDetailIgnoresRangeKey(t *testing.T) {
	h := newHarness(t, true)

	h.press(runes("r"))
	before := len(h.session.Calls())
	h.press(tea.KeyMsg{Type: tea.KeyTab})

	require.Equal(t, detailRecent, h.app.detail.kind)
	require.Len(t, h.session.Calls(), before)
}

func TestStaleDetailResultIsDropped(t *testing.T) {
	h := newHarness(t, true)
	h.app.detail = newDetailView(detailArtists, spotify.ShortTerm)
	first := h.app.loadDetail(h.app.detail)
	second := h.app.loadDetail(h.app.detail)

	h.app.Update(first())
	require.True(t, h.app.detail.loading)

	h.app.Update(second())
	require.False(t, h.app.detail.loading)
	require.Len(t, h.app.detail.rows, 5)
}

func TestDetailOpenReportsScreenOrigin(t *testing.T) {
	h := newHarness(t, true)

	h.press(runes("a"))
	h.press(tea.KeyMsg{Type: tea.KeyDown})
	h.press(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, []browser.Call{{From: "top-artists", URL: "https://open.spotify.com/artist/medium_term1"}}, h.links.Calls())
}

func TestDetailFilter(t *testing.T) {
	h := newHarness(t, true)
	h.press(runes("a"))

	h.press(runes("/"))
	require.True(t, h.app.detail.filtering)
	h.press(runes("artist 3"))
	require.Equal(t, "Artist 3 medium_term", h.app.detail.visible[0].title)
	require.Contains(t, h.view(), "/ artist 3")

	// q is text while filtering
	h.press(runes("q"))
	require.NotNil(t, h.app.detail)
	require.False(t, h.app.quitting)

	h.press(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, h.app.detail.filtering)
	require.Len(t, h.app.detail.visible, 5)
}

func TestInertDashboard(t *testing.T) {
	h := newHarness(t, false)

	require.False(t, h.state.Ready())
	require.Contains(t, h.view(), "No saved screen state")

	h.press(runes("a"))
	require.Nil(t, h.app.detail)
	require.NotEmpty(t, h.app.status)
	require.Empty(t, h.session.Calls())
}

func TestErrorsAreShown(t *testing.T) {
	h := newHarness(t, true)

	_, _ = h.app.Update(errMsg{err: fmt.Errorf("spotify: HTTP 503")})

	require.Contains(t, h.view(), "error: spotify: HTTP 503")

	_, _ = h.app.Update(recentMsg(nil))
	require.NotContains(t, h.view(), "HTTP 503")

	_, _ = h.app.Update(errMsg{err: fmt.Errorf("spotify: HTTP 502")})
	h.press(runes("a"))
	require.NotContains(t, h.view(), "HTTP 502")
}

func TestQuitClosesMailbox(t *testing.T) {
	h := newHarness(t, true)

	_, cmd := h.app.Update(runes("q"))
	require.NotNil(t, cmd)
	require.True(t, h.app.quitting)
	require.Nil(t, waitForUpdate(h.app.box)())
	require.Empty(t, strings.TrimSpace(h.app.View()))
}
