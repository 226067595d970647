package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#A78BFA") // Light purple
	colorSuccess   = lipgloss.Color("#10B981") // Green
	colorDanger    = lipgloss.Color("#EF4444") // Red (errors)
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorBorder    = lipgloss.Color("#374151") // Dark gray
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
)

// Shared styles used across TUI views and CLI output.
var (
	// Section header within a panel (e.g. "SELECT SKILL").
	// No MarginBottom; views add explicit newlines.
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorMuted)

	// Selected item in a list.
	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	// Normal (unselected) item in a list.
	normalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D1D5DB"))

	// Muted text (descriptions, secondary info).
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Badge for counts and tool groups.
	badgeStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	// Success indicator.
	okStyle = lipgloss.NewStyle().
		Foreground(colorSuccess)

	// Error text.
	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	// Warning text (invalid candidates, skipped targets).
	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	// Help text at the bottom.
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Section header rule (the ─── line after the label).
	sectionRuleStyle = lipgloss.NewStyle().
				Foreground(colorBorder)

	// Confirmation dialog.
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	dialogButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(colorMuted).
				Padding(0, 2)

	dialogActiveButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(colorDanger).
				Padding(0, 2).
				Bold(true)

	// Clone failure box.
	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(0, 1)
)

// renderSectionHeader renders a section label with short rules on both sides:
// "  ── SKILLS ──"
func renderSectionHeader(label string) string {
	rule := sectionRuleStyle.Render("──")
	text := sectionHeaderStyle.Render(" " + label + " ")
	return "  " + rule + text + rule
}

// Exported styles for CLI table output.
var (
	HeaderStyle  = sectionHeaderStyle
	NameStyle    = normalItemStyle.Bold(true)
	MutedStyle   = mutedStyle
	BadgeStyle   = badgeStyle
	OKStyle      = okStyle
	ErrorStyle   = errorStyle
	WarningStyle = warningStyle
)
