// Package tui provides the Bubble Tea chat picker for the ToyAgent CLI.
//
// The picker launches when a human runs bare `toyagent chat` in an
// interactive terminal with existing conversations to resume. It is never
// activated for agents, CI/CD, or piped output -- three independent gates
// (--json, --quiet, isatty) prevent it.
package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/toyagent/cli/internal/api"
)

// --- TTY gate ---

// ShouldRunTUI returns true if the TUI should be launched.
// Returns false when stdout is not a terminal, or --json/--quiet flags are set.
//
// Parameters:
//   - jsonOutput: whether --json was passed
//   - quiet: whether --quiet was passed
//
// Returns:
//   - bool: true if the TUI should run
func ShouldRunTUI(jsonOutput, quiet bool) bool {
	if jsonOutput || quiet {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// --- Brand colors (mirrors internal/ui/styles.go) ---

var (
	indigo  = lipgloss.Color("#6366F1")
	teal    = lipgloss.Color("#14B8A6")
	red     = lipgloss.Color("#EF4444")
	gray    = lipgloss.Color("#6B7280")
	dimGray = lipgloss.Color("#9CA3AF")
	white   = lipgloss.Color("#E5E7EB")
)

// --- Shared TUI styles ---

var (
	// titleStyle renders the picker header.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(indigo)

	// selectedStyle highlights the currently selected list item.
	selectedStyle = lipgloss.NewStyle().
			Foreground(indigo).
			Bold(true)

	// normalStyle renders unselected list items.
	normalStyle = lipgloss.NewStyle().
			Foreground(white)

	// dimStyle renders low-priority text.
	dimStyle = lipgloss.NewStyle().
			Foreground(dimGray)

	// errorStyle renders failure notices.
	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	// helpStyle renders the bottom key hint bar.
	helpStyle = lipgloss.NewStyle().
			Foreground(gray)
)

// --- Shared message types ---

// ChatListMsg carries the fetched chat list from the API.
type ChatListMsg struct {
	Chats []api.ChatSummary
	Err   error
}

// --- Shared spinner factory ---

// newSpinner creates a consistently styled braille spinner.
func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(teal)
	return s
}
