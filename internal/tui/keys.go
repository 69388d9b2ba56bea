package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the application
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Back   key.Binding
	Quit   key.Binding
	Help   key.Binding
	Filter key.Binding

	TopArtists     key.Binding
	TopTracks      key.Binding
	RecentlyPlayed key.Binding
	NextRange      key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "open in browser"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		TopArtists: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "top artists"),
		),
		TopTracks: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "top tracks"),
		),
		RecentlyPlayed: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "recently played"),
		),
		NextRange: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "time range"),
		),
	}
}

// ShortHelp returns a short help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.TopArtists, k.TopTracks, k.RecentlyPlayed, k.Help, k.Quit}
}

// FullHelp returns the full help string
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.TopArtists, k.TopTracks, k.RecentlyPlayed},
		{k.NextRange, k.Filter, k.Back},
		{k.Help, k.Quit},
	}
}

// detailKeys is the help shown on a detail screen.
type detailKeys struct{ KeyMap }

func (k detailKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.NextRange, k.Filter, k.Back, k.Quit}
}
