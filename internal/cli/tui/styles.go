package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("86")  // Cyan
	colorSecondary = lipgloss.Color("240") // Gray
	colorSuccess   = lipgloss.Color("82")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorDanger    = lipgloss.Color("196") // Red
	colorMuted     = lipgloss.Color("245") // Light gray
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	haltedStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)
)

// stateColor maps a session state to its display color.
func stateColor(state string) lipgloss.Color {
	switch state {
	case "checkpoint":
		return colorSuccess
	case "failed":
		return colorDanger
	default:
		return colorPrimary
	}
}
