package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/spotifydaily/internal/browser"
	"github.com/jask/spotifydaily/internal/dashboard"
	"github.com/jask/spotifydaily/internal/reactive"
	"github.com/jask/spotifydaily/internal/screenstate"
	"github.com/jask/spotifydaily/internal/spotify"
)

const dashboardOrigin browser.Origin = "dashboard"

// ScreenStore reads and writes the persisted screen states.
type ScreenStore interface {
	screenstate.DataManager
	screenstate.Writer
}

// Deps are the collaborators of the App.
type Deps struct {
	State   *dashboard.State
	Session dashboard.SessionService
	Screens ScreenStore

	// DetailLimit is the page size of the detail screens.
	DetailLimit int
	// DefaultRange is used by a detail screen whose state was never saved.
	DefaultRange spotify.TimeRange

	Logger *slog.Logger
	Now    func() time.Time
}

type detailMsg struct {
	kind detailKind
	seq  int
	rows []row
	err  error
}

// App is the root bubbletea model: the dashboard plus at most one pushed
// detail screen.
type App struct {
	ctx          context.Context
	state        *dashboard.State
	session      dashboard.SessionService
	screens      ScreenStore
	detailLimit  int
	defaultRange spotify.TimeRange
	logger       *slog.Logger
	now          func() time.Time

	box *mailbox
	bag reactive.Bag

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	artists       []dashboard.ArtistCell
	tracks        []dashboard.TrackCell
	recent        []dashboard.RecentCell
	artistsLoaded bool
	tracksLoaded  bool
	recentLoaded  bool
	cursor        int
	detail        *detailView
	status        string
	err           error
	width, height int
	quitting      bool
}

// New builds the App and subscribes it to deps.State.
func New(ctx context.Context, deps Deps) *App {
	a := &App{
		ctx:          ctx,
		state:        deps.State,
		session:      deps.Session,
		screens:      deps.Screens,
		detailLimit:  deps.DetailLimit,
		defaultRange: deps.DefaultRange,
		logger:       deps.Logger,
		now:          deps.Now,
		box:          newMailbox(),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.detailLimit <= 0 {
		a.detailLimit = 20
	}
	if !a.defaultRange.Valid() {
		a.defaultRange = spotify.MediumTerm
	}
	a.spinner.Style = metaStyle
	bindState(a.state, a.box, &a.bag)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(a.box), a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case updatesMsg:
		cmds := make([]tea.Cmd, 0, len(m)+1)
		for _, inner := range m {
			_, cmd := a.Update(inner)
			cmds = append(cmds, cmd)
		}
		if !a.quitting {
			cmds = append(cmds, waitForUpdate(a.box))
		}
		return a, tea.Batch(cmds...)
	case artistsMsg:
		a.artists = []dashboard.ArtistCell(m)
		a.artistsLoaded = true
		a.err = nil
		a.clampCursor()
	case tracksMsg:
		a.tracks = []dashboard.TrackCell(m)
		a.tracksLoaded = true
		a.err = nil
		a.clampCursor()
	case recentMsg:
		a.recent = []dashboard.RecentCell(m)
		a.recentLoaded = true
		a.err = nil
		a.clampCursor()
	case errMsg:
		a.err = m.err
	case navigateMsg:
		return a, a.push(m.kind)
	case detailMsg:
		d := a.detail
		if d == nil || d.kind != m.kind || d.seq != m.seq {
			return a, nil
		}
		if m.err != nil {
			d.loading = false
			d.err = m.err
			a.logger.Error("load detail", "screen", d.kind.origin(), "error", m.err)
			return a, nil
		}
		d.setRows(m.rows)
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd
	case tea.KeyMsg:
		return a.handleKey(m)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.detail != nil && a.detail.filtering {
		return a.handleFilterKey(m)
	}
	switch {
	case key.Matches(m, a.keys.Quit):
		a.shutdown()
		return a, tea.Quit
	case key.Matches(m, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}
	if a.detail != nil {
		return a.handleDetailKey(m)
	}
	return a.handleDashboardKey(m)
}

func (a *App) handleDashboardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(m, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(m, a.keys.Open):
		rows := a.dashboardRows()
		if a.cursor < len(rows) {
			rows[a.cursor].open(dashboardOrigin)
		}
	case key.Matches(m, a.keys.TopArtists):
		a.navigate(a.state.PresentTopArtists())
	case key.Matches(m, a.keys.TopTracks):
		a.navigate(a.state.PresentTopTracks())
	case key.Matches(m, a.keys.RecentlyPlayed):
		a.navigate(a.state.PresentRecentlyPlayed())
	}
	return a, nil
}

// navigate raises a presentation intent; the pushed screen arrives through
// the mailbox.
func (a *App) navigate(intent *reactive.Signal) {
	if !a.state.Ready() {
		a.status = "no saved screen state; run `spotifydaily state set` first"
		return
	}
	reactive.Fire(intent)
}

func (a *App) handleDetailKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := a.detail
	switch {
	case key.Matches(m, a.keys.Back):
		a.pop()
	case key.Matches(m, a.keys.Up):
		d.move(-1)
	case key.Matches(m, a.keys.Down):
		d.move(1)
	case key.Matches(m, a.keys.Open):
		if r, ok := d.selected(); ok {
			r.open(d.kind.origin())
		}
	case key.Matches(m, a.keys.Filter):
		d.filtering = true
		return a, d.filter.Focus()
	case key.Matches(m, a.keys.NextRange):
		if !d.kind.ranged() {
			return a, nil
		}
		d.timeRange = d.timeRange.Next()
		if err := a.persistRange(d.kind, d.timeRange); err != nil {
			a.err = err
			a.logger.Error("persist time range", "screen", d.kind.origin(), "error", err)
		}
		return a, a.loadDetail(d)
	}
	return a, nil
}

func (a *App) handleFilterKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := a.detail
	switch m.Type {
	case tea.KeyCtrlC:
		a.shutdown()
		return a, tea.Quit
	case tea.KeyEnter:
		d.filtering = false
		d.filter.Blur()
		return a, nil
	case tea.KeyEsc:
		d.filtering = false
		d.filter.Blur()
		d.filter.SetValue("")
		d.applyFilter()
		return a, nil
	case tea.KeyUp:
		d.move(-1)
		return a, nil
	case tea.KeyDown:
		d.move(1)
		return a, nil
	}
	var cmd tea.Cmd
	d.filter, cmd = d.filter.Update(m)
	d.applyFilter()
	return a, cmd
}

// push opens the detail screen for kind with its persisted time range.
func (a *App) push(kind detailKind) tea.Cmd {
	if a.detail != nil {
		return nil
	}
	a.detail = newDetailView(kind, a.persistedRange(kind))
	a.status = ""
	a.err = nil
	a.logger.Debug("screen pushed", "screen", kind.origin())
	return a.loadDetail(a.detail)
}

// pop closes the detail screen and tells the dashboard so it can pick up a
// changed time range and refresh the play history.
func (a *App) pop() {
	if a.detail == nil {
		return
	}
	a.logger.Debug("screen dismissed", "screen", a.detail.kind.origin())
	a.detail = nil
	a.err = nil
	reactive.Fire(a.state.ChildDismissed())
}

func (a *App) loadDetail(d *detailView) tea.Cmd {
	d.seq++
	d.loading = true
	kind, tr, seq := d.kind, d.timeRange, d.seq
	return func() tea.Msg {
		rows, err := a.fetchDetail(a.ctx, kind, tr)
		return detailMsg{kind: kind, seq: seq, rows: rows, err: err}
	}
}

func (a *App) persistedRange(kind detailKind) spotify.TimeRange {
	switch kind {
	case detailArtists:
		s, ok, err := screenstate.LoadArtists(a.ctx, a.screens)
		if err != nil {
			a.logger.Warn("read artists screen state", "error", err)
		}
		if ok {
			return s.TimeRange
		}
	case detailTracks:
		s, ok, err := screenstate.LoadTracks(a.ctx, a.screens)
		if err != nil {
			a.logger.Warn("read tracks screen state", "error", err)
		}
		if ok {
			return s.TimeRange
		}
	default:
		return ""
	}
	return a.defaultRange
}

func (a *App) persistRange(kind detailKind, tr spotify.TimeRange) error {
	if kind == detailArtists {
		return screenstate.SaveArtists(a.ctx, a.screens, screenstate.Artists{TimeRange: tr})
	}
	return screenstate.SaveTracks(a.ctx, a.screens, screenstate.Tracks{TimeRange: tr})
}

func (a *App) shutdown() {
	if a.quitting {
		return
	}
	a.quitting = true
	a.bag.Close()
	a.box.close()
}

// dashboardRows is every selectable dashboard row, section by section.
func (a *App) dashboardRows() []row {
	rows := a.artistRows(a.artists)
	rows = append(rows, a.trackRows(a.tracks)...)
	return append(rows, a.recentRows(a.recent)...)
}

func (a *App) moveCursor(delta int) {
	n := len(a.artists) + len(a.tracks) + len(a.recent)
	if n == 0 {
		return
	}
	a.cursor = (a.cursor + delta + n) % n
}

func (a *App) clampCursor() {
	n := len(a.artists) + len(a.tracks) + len(a.recent)
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("spotifydaily") + "\n")
	if a.detail != nil {
		b.WriteString(a.detail.view(a.width, a.spinner.View()))
	} else {
		b.WriteString(a.renderDashboard())
	}
	b.WriteString("\n")
	switch {
	case a.err != nil:
		b.WriteString(errorStyle.Render("error: "+a.err.Error()) + "\n")
	case a.status != "":
		b.WriteString(statusStyle.Render(a.status) + "\n")
	}
	if a.detail != nil {
		b.WriteString(a.help.View(detailKeys{a.keys}))
	} else {
		b.WriteString(a.help.View(a.keys))
	}
	return b.String()
}

func (a *App) renderDashboard() string {
	if !a.state.Ready() {
		return sectionStyle.Render(emptyStyle.Render(
			"No saved screen state.\nRun `spotifydaily state set artists medium_term` (and tracks), or restart without --no-seed."))
	}
	artistsRange, tracksRange := a.state.TimeRanges()
	offset := 0
	sections := []struct {
		title  string
		label  string
		rows   []row
		loaded bool
	}{
		{"Top Artists", artistsRange.Label(), a.artistRows(a.artists), a.artistsLoaded},
		{"Top Tracks", tracksRange.Label(), a.trackRows(a.tracks), a.tracksLoaded},
		{"Recently Played", "", a.recentRows(a.recent), a.recentLoaded},
	}

	out := make([]string, 0, len(sections))
	for _, s := range sections {
		var b strings.Builder
		title := sectionTitleStyle.Render(s.title)
		if s.label != "" {
			title += " " + rangeStyle.Render(s.label)
		}
		b.WriteString(title + "\n")
		switch {
		case !s.loaded:
			b.WriteString(a.spinner.View() + emptyStyle.Render(" loading"))
		case len(s.rows) == 0:
			b.WriteString(emptyStyle.Render("nothing here"))
		default:
			for i, r := range s.rows {
				b.WriteString(renderRow(i+1, r, offset+i == a.cursor))
				if i < len(s.rows)-1 {
					b.WriteString("\n")
				}
			}
		}
		offset += len(s.rows)

		style := sectionStyle
		if a.width > 4 {
			style = style.Width(a.width - 2)
		}
		out = append(out, style.Render(b.String()))
	}
	return strings.Join(out, "\n")
}
