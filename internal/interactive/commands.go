// Package interactive provides the interactive chat mode for the CLI.
//
// This file contains the slash-command parser for the chat REPL.
package interactive

import (
	"fmt"
	"strings"
)

// CommandType identifies a REPL slash command.
type CommandType int

const (
	// CommandMessage is plain input sent to the agent.
	CommandMessage CommandType = iota

	// CommandHelp shows the command reference.
	CommandHelp

	// CommandQuit exits the REPL.
	CommandQuit

	// CommandNew starts a fresh conversation.
	CommandNew

	// CommandHistory reprints the stored transcript.
	CommandHistory

	// CommandChats lists chat sessions.
	CommandChats

	// CommandCopy copies the last assistant reply to the clipboard.
	CommandCopy

	// CommandWorkflow follows the current (or a named) workflow.
	CommandWorkflow

	// CommandStatus shows session state.
	CommandStatus
)

// Command is one parsed REPL input.
type Command struct {
	// Type is the command type.
	Type CommandType

	// Arg is the remainder after the command word, trimmed.
	Arg string
}

// ParseCommand parses one line of REPL input.
//
// Input starting with "/" is a slash command; everything else is a chat
// message sent verbatim.
//
// Parameters:
//   - input: The trimmed input line
//
// Returns:
//   - Command: The parsed command
//   - error: Parse error for unknown slash commands
func ParseCommand(input string) (Command, error) {
	if !strings.HasPrefix(input, "/") {
		return Command{Type: CommandMessage, Arg: input}, nil
	}

	word, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(word) {
	case "/help", "/?":
		return Command{Type: CommandHelp}, nil
	case "/quit", "/exit", "/q":
		return Command{Type: CommandQuit}, nil
	case "/new":
		return Command{Type: CommandNew}, nil
	case "/history":
		return Command{Type: CommandHistory}, nil
	case "/chats":
		return Command{Type: CommandChats}, nil
	case "/copy":
		return Command{Type: CommandCopy}, nil
	case "/workflow", "/wf":
		return Command{Type: CommandWorkflow, Arg: arg}, nil
	case "/status":
		return Command{Type: CommandStatus}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q (try /help)", word)
	}
}
