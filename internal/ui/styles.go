// Package ui provides terminal UI components using Charm libraries.
//
// This package contains the styling, rendering, and interactive components
// for the ToyAgent CLI's terminal interface.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Brand colors for ToyAgent.
var (
	// Primary brand color
	Indigo = lipgloss.Color("#6366F1")

	// Secondary colors
	Teal    = lipgloss.Color("#14B8A6")
	Red     = lipgloss.Color("#EF4444")
	Amber   = lipgloss.Color("#F59E0B")
	Green   = lipgloss.Color("#22C55E")
	Gray    = lipgloss.Color("#6B7280")
	DimGray = lipgloss.Color("#9CA3AF")
)

// quietMode suppresses decorative output like the banner.
var quietMode bool

// SetQuiet enables or disables quiet mode.
//
// Parameters:
//   - quiet: If true, decorative output is suppressed
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// Text styles.
var (
	// TitleStyle for main headings
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Indigo)

	// SubtitleStyle for secondary headings
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	// AccentStyle for highlighted fragments
	AccentStyle = lipgloss.NewStyle().
			Foreground(Indigo)

	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// WarningStyle for warning messages
	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	// InfoStyle for informational messages
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	// DimStyle for less important text
	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	// LinkStyle for URLs
	LinkStyle = lipgloss.NewStyle().
			Foreground(Indigo).
			Underline(true)
)

// Chat transcript styles.
var (
	// UserLabelStyle for the "you" prefix in transcripts
	UserLabelStyle = lipgloss.NewStyle().
			Foreground(Teal).
			Bold(true)

	// AssistantLabelStyle for the "agent" prefix in transcripts
	AssistantLabelStyle = lipgloss.NewStyle().
				Foreground(Indigo).
				Bold(true)

	// SystemLabelStyle for client-injected notices
	SystemLabelStyle = lipgloss.NewStyle().
				Foreground(Amber).
				Bold(true)
)

// Box styles.
var (
	// BoxStyle for content boxes
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Indigo).
			Padding(0, 1)

	// BoxTitleStyle for box titles
	BoxTitleStyle = lipgloss.NewStyle().
			Foreground(Indigo).
			Bold(true)
)

// Table styles.
var (
	// TableHeaderStyle for table headers
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(DimGray).
				Bold(true)

	// TableCellStyle for table cells
	TableCellStyle = lipgloss.NewStyle()
)

// Status indicator styles.
var (
	// StatusCompletedStyle for completed status
	StatusCompletedStyle = lipgloss.NewStyle().
				Foreground(Green)

	// StatusFailedStyle for failed status
	StatusFailedStyle = lipgloss.NewStyle().
				Foreground(Red)

	// StatusRunningStyle for running status
	StatusRunningStyle = lipgloss.NewStyle().
				Foreground(Teal)

	// StatusPendingStyle for pending status
	StatusPendingStyle = lipgloss.NewStyle().
				Foreground(Amber)
)
