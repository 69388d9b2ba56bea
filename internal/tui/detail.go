package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jask/spotifydaily/internal/browser"
	"github.com/jask/spotifydaily/internal/spotify"
)

type detailKind int

const (
	detailArtists detailKind = iota
	detailTracks
	detailRecent
)

func (k detailKind) title() string {
	switch k {
	case detailArtists:
		return "Top Artists"
	case detailTracks:
		return "Top Tracks"
	}
	return "Recently Played"
}

func (k detailKind) origin() browser.Origin {
	switch k {
	case detailArtists:
		return "top-artists"
	case detailTracks:
		return "top-tracks"
	}
	return "recently-played"
}

// ranged reports whether the screen has a time range to cycle.
func (k detailKind) ranged() bool { return k != detailRecent }

// row is one line of a detail list.
type row struct {
	title    string
	subtitle string
	meta     string
	open     func(from browser.Origin)
}

// detailView is a pushed list screen.
type detailView struct {
	kind      detailKind
	timeRange spotify.TimeRange
	rows      []row
	visible   []row
	cursor    int
	loading   bool
	err       error
	filter    textinput.Model
	filtering bool
	seq       int
}

func newDetailView(kind detailKind, tr spotify.TimeRange) *detailView {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.CharLimit = 64
	ti.Cursor.SetMode(cursor.CursorStatic)
	return &detailView{kind: kind, timeRange: tr, loading: true, filter: ti}
}

func (d *detailView) setRows(rows []row) {
	d.rows = rows
	d.loading = false
	d.err = nil
	d.applyFilter()
}

func (d *detailView) applyFilter() {
	d.visible = filterRows(d.rows, d.filter.Value())
	if d.cursor >= len(d.visible) {
		d.cursor = max(0, len(d.visible)-1)
	}
}

func (d *detailView) move(delta int) {
	if len(d.visible) == 0 {
		return
	}
	d.cursor = (d.cursor + delta + len(d.visible)) % len(d.visible)
}

func (d *detailView) selected() (row, bool) {
	if d.cursor < 0 || d.cursor >= len(d.visible) {
		return row{}, false
	}
	return d.visible[d.cursor], true
}

func (d *detailView) view(width int, spin string) string {
	var b strings.Builder
	title := sectionTitleStyle.Render(d.kind.title())
	if d.kind.ranged() {
		title += " " + rangeStyle.Render(d.timeRange.Label())
	}
	b.WriteString(title + "\n")
	if d.filtering || d.filter.Value() != "" {
		b.WriteString(d.filter.View() + "\n")
	}

	switch {
	case d.loading:
		b.WriteString(spin + emptyStyle.Render(" loading"))
	case d.err != nil:
		b.WriteString(errorStyle.Render(d.err.Error()))
	case len(d.visible) == 0:
		b.WriteString(emptyStyle.Render("nothing here"))
	default:
		for i, r := range d.visible {
			b.WriteString(renderRow(i+1, r, i == d.cursor))
			if i < len(d.visible)-1 {
				b.WriteString("\n")
			}
		}
	}

	style := sectionStyle
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(b.String())
}

func renderRow(n int, r row, selected bool) string {
	line := fmt.Sprintf("%2d. %s", n, r.title)
	if r.subtitle != "" {
		line += " · " + r.subtitle
	}
	style := itemStyle
	if selected {
		style = selectedStyle
	}
	out := style.Render(line)
	if r.meta != "" {
		out += " " + metaStyle.Render(r.meta)
	}
	return out
}
