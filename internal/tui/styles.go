package tui

import "github.com/charmbracelet/lipgloss"

// Palette for the dark terminal theme.
var (
	Primary  = lipgloss.Color("#9146FF") // Twitch purple
	Accent   = lipgloss.Color("#FF0033") // YouTube red
	Success  = lipgloss.Color("#4CAF50")
	Warning  = lipgloss.Color("#FFB74D")
	Error    = lipgloss.Color("#F44336")
	Text     = lipgloss.Color("#E0E0E0")
	Muted    = lipgloss.Color("#90A4AE")
	HeaderBg = lipgloss.Color("#1C2128")
	Border   = lipgloss.Color("#30363D")
)

var (
	titleStyle = lipgloss.NewStyle().
		Foreground(Text).
		Background(HeaderBg).
		Bold(true).
		Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
		Foreground(Muted).
		Padding(0, 2)

	activeTabStyle = tabStyle.
		Foreground(Primary).
		Bold(true).
		Underline(true)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
		Foreground(Muted).
		Width(16)

	valueStyle = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(Success)

	warnStyle = lipgloss.NewStyle().
		Foreground(Warning)

	errorStyle = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	mutedStyle = lipgloss.NewStyle().
		Foreground(Muted)

	imageStyle = lipgloss.NewStyle().
		Foreground(Accent).
		Italic(true)

	helpStyle = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)
)
