// Package ui provides the ASCII banner for the ToyAgent CLI.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// banner is the ASCII art logo for the ToyAgent CLI.
const banner = `
  ████████╗ ██████╗ ██╗   ██╗ █████╗  ██████╗ ███████╗███╗   ██╗████████╗
  ╚══██╔══╝██╔═══██╗╚██╗ ██╔╝██╔══██╗██╔════╝ ██╔════╝████╗  ██║╚══██╔══╝
     ██║   ██║   ██║ ╚████╔╝ ███████║██║  ███╗█████╗  ██╔██╗ ██║   ██║
     ██║   ██║   ██║  ╚██╔╝  ██╔══██║██║   ██║██╔══╝  ██║╚██╗██║   ██║
     ██║   ╚██████╔╝   ██║   ██║  ██║╚██████╔╝███████╗██║ ╚████║   ██║
     ╚═╝    ╚═════╝    ╚═╝   ╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝  ╚═══╝   ╚═╝   `

// tagline is the product tagline.
const tagline = "Chat with an agent that runs workflows for you"

// PrintBanner prints the ToyAgent banner with version info.
//
// Parameters:
//   - version: The CLI version string to display
func PrintBanner(version string) {
	if quietMode {
		return
	}

	styledBanner := lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true).
		Render(banner)

	fmt.Println(styledBanner)
	fmt.Println()

	taglineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		PaddingLeft(2)
	fmt.Println(taglineStyle.Render(tagline))
	fmt.Println()

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		PaddingLeft(2)
	fmt.Println(infoStyle.Render(fmt.Sprintf("Version: %s", version)))
	fmt.Println()
}

// GetCondensedHelp returns a compact cheat-sheet for the common journey.
// Shown when the user runs `toyagent` with no arguments. No ASCII banner,
// no Cobra auto-generated command list -- just the essentials.
func GetCondensedHelp() string {
	accent := lipgloss.NewStyle().Foreground(Indigo).Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	return fmt.Sprintf(`%s

%s
  %s                      Start an interactive chat session
  %s      Send one message and stream the reply
  %s        Follow a workflow until it finishes

%s
  %s                 List chat sessions
  %s              Show a chat transcript
  %s   Show workflow step statuses

%s
  %s                Start MCP server for AI integration

%s
`,
		accent.Render("ToyAgent")+" - "+dim.Render(tagline),
		accent.Render("Getting Started:"),
		accent.Render("toyagent chat"),
		accent.Render(`toyagent chat send "..."`),
		accent.Render("toyagent workflow watch <id>"),
		accent.Render("Manage:"),
		accent.Render("toyagent chat list"),
		accent.Render("toyagent chat history"),
		accent.Render("toyagent workflow status <id>"),
		accent.Render("AI/Tooling:"),
		accent.Render("toyagent mcp serve"),
		hint.Render(`Use "toyagent --help" for a full list of commands.`),
	)
}
