package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#5a4fcf", Dark: "#a99cff"}
	colorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ff6b6b"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#22863a", Dark: "#97e023"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6a737d", Dark: "#8b949e"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	doneStyle     = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
)
