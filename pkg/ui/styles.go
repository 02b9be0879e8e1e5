package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors for light and dark terminals. Light mode uses darker
// colors for contrast on white backgrounds.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	ColorBorder = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	statementStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Italic(true)

	sectionNameStyle = lipgloss.NewStyle().
				Foreground(ColorInfo).
				Bold(true)

	chipStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext).
			Background(lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	claimActiveStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	claimStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	autoplayOnStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	insightStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Italic(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)
