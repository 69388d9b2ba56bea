package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#1DB954")
	colorFg     = lipgloss.Color("#ABB2BF")
	colorMuted  = lipgloss.Color("#636B78")
	colorRed    = lipgloss.Color("#E06C75")
	colorBorder = lipgloss.Color("#3F4451")
	colorSelBg  = lipgloss.Color("#2C313C")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			PaddingLeft(1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	sectionTitleStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	rangeStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	itemStyle     = lipgloss.NewStyle().Foreground(colorFg)
	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Background(colorSelBg).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	emptyStyle    = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	statusStyle = lipgloss.NewStyle().Foreground(colorMuted).PaddingLeft(1)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed).PaddingLeft(1)
)
