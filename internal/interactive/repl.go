// Package interactive provides the interactive chat mode for the CLI.
//
// This file contains the REPL (Read-Eval-Print Loop) for chatting with the
// agent and following the workflows it starts.
package interactive

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/toyagent/cli/internal/api"
	"github.com/toyagent/cli/internal/chat"
	"github.com/toyagent/cli/internal/config"
	"github.com/toyagent/cli/internal/events"
	"github.com/toyagent/cli/internal/ui"
	"github.com/toyagent/cli/internal/workflow"
)

// REPL handles the interactive chat loop.
type REPL struct {
	// engine is the chat reconciliation engine for this session.
	engine *chat.Engine

	// client is the backend API client.
	client *api.Client

	// session persists the active chat across invocations.
	session *config.SessionStore

	// reader reads user input.
	reader *bufio.Reader

	// running indicates if the REPL is active (accessed atomically).
	running atomic.Bool

	// styles contains the UI styles.
	styles *REPLStyles
}

// REPLStyles contains the styling for REPL output.
type REPLStyles struct {
	// Prompt is the style for the input prompt.
	Prompt lipgloss.Style

	// Success is the style for success messages.
	Success lipgloss.Style

	// Error is the style for error messages.
	Error lipgloss.Style

	// Info is the style for info messages.
	Info lipgloss.Style

	// Dim is the style for dimmed text.
	Dim lipgloss.Style

	// Agent is the style for the agent's reply prefix.
	Agent lipgloss.Style
}

// NewREPLStyles creates default REPL styles.
//
// Returns:
//   - *REPLStyles: The default styles
func NewREPLStyles() *REPLStyles {
	return &REPLStyles{
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6")).Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Agent:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6366F1")).Bold(true),
	}
}

// NewREPL creates a new REPL instance.
//
// Parameters:
//   - client: The backend API client
//   - engine: The chat engine (its active chat, if any, is resumed)
//   - session: The session store for persisting the active chat
//
// Returns:
//   - *REPL: A new REPL instance
func NewREPL(client *api.Client, engine *chat.Engine, session *config.SessionStore) *REPL {
	return &REPL{
		engine:  engine,
		client:  client,
		session: session,
		reader:  bufio.NewReader(os.Stdin),
		styles:  NewREPLStyles(),
	}
}

// Run starts the REPL loop.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: Any error that occurred
func (r *REPL) Run(ctx context.Context) error {
	r.running.Store(true)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			fmt.Printf("\n%s\n", r.styles.Info.Render(fmt.Sprintf("Received %v, shutting down...", sig)))
			r.running.Store(false)
			cancel()
		case <-ctx.Done():
			return
		}
	}()

	r.printWelcome()

	// Read input in a separate goroutine so cancellation can interrupt
	// the prompt.
	inputChan := make(chan string)
	errChan := make(chan error)
	go func() {
		for r.running.Load() {
			input, err := r.reader.ReadString('\n')
			if err != nil {
				if r.running.Load() {
					errChan <- err
				}
				return
			}
			if r.running.Load() {
				inputChan <- strings.TrimSpace(input)
			}
		}
	}()

	for r.running.Load() {
		fmt.Print(r.styles.Prompt.Render("you ❯ "))

		select {
		case <-ctx.Done():
			r.running.Store(false)
			continue

		case err := <-errChan:
			if err.Error() == "EOF" {
				fmt.Println()
				r.running.Store(false)
				continue
			}
			fmt.Println(r.styles.Error.Render(fmt.Sprintf("Error reading input: %v", err)))
			continue

		case input := <-inputChan:
			if input == "" {
				continue
			}
			if err := r.executeCommand(ctx, input); err != nil {
				fmt.Println(r.styles.Error.Render(fmt.Sprintf("Error: %v", err)))
			}
		}
	}

	fmt.Println(r.styles.Dim.Render("Bye."))
	return nil
}

// executeCommand parses and executes one line of input.
func (r *REPL) executeCommand(ctx context.Context, input string) error {
	cmd, err := ParseCommand(input)
	if err != nil {
		return err
	}

	switch cmd.Type {
	case CommandHelp:
		r.printHelp()
		return nil

	case CommandQuit:
		r.running.Store(false)
		return nil

	case CommandNew:
		r.engine.SetChatID("")
		if r.session != nil {
			_ = r.session.ClearActiveChat()
		}
		fmt.Println(r.styles.Info.Render("Started a new conversation."))
		return nil

	case CommandHistory:
		return r.printHistory(ctx)

	case CommandChats:
		return r.printChats(ctx)

	case CommandCopy:
		return r.copyLastReply()

	case CommandWorkflow:
		return r.watchWorkflow(ctx, cmd.Arg)

	case CommandStatus:
		r.printStatus()
		return nil

	default:
		return r.sendMessage(ctx, cmd.Arg)
	}
}

// sendMessage sends one message and renders the streamed reply in place.
func (r *REPL) sendMessage(ctx context.Context, content string) error {
	fmt.Print(r.styles.Agent.Render("agent ❯ "))

	r.engine.OnDelta = func(text string) {
		fmt.Print(text)
	}
	defer func() { r.engine.OnDelta = nil }()

	err := r.engine.SendMessage(ctx, content)
	fmt.Println()
	if err != nil {
		return err
	}

	if r.session != nil {
		_ = r.session.SetActiveChat(r.engine.ChatID())
	}

	if wf := r.engine.CurrentWorkflow(); wf != nil {
		fmt.Println(r.styles.Info.Render(
			fmt.Sprintf("Workflow %q started (%s). Following it now; /workflow to re-attach later.", wf.Name, wf.ID)))
		return r.followWorkflow(ctx, wf.ID)
	}
	return nil
}

// watchWorkflow attaches to a workflow by id, defaulting to the one started
// by the latest exchange.
func (r *REPL) watchWorkflow(ctx context.Context, workflowID string) error {
	if workflowID == "" {
		wf := r.engine.CurrentWorkflow()
		if wf == nil {
			return fmt.Errorf("no workflow in this session; pass an id: /workflow <id>")
		}
		workflowID = wf.ID
	}
	return r.followWorkflow(ctx, workflowID)
}

// followWorkflow follows a workflow's status stream until it finishes.
func (r *REPL) followWorkflow(ctx context.Context, workflowID string) error {
	tracker := ui.NewStepTracker()
	watcher := workflow.NewWatcher(r.client)
	watcher.OnUpdate = func(t *workflow.Tracker) {
		ui.StopSpinner()
		views := make([]ui.StepView, 0)
		for _, s := range t.Steps() {
			views = append(views, ui.StepView{ID: s.ID, Status: string(s.Status)})
		}
		tracker.Update(views)
	}

	ui.StartSpinner("Fetching workflow status...")
	result, err := watcher.Watch(ctx, workflowID)
	ui.StopSpinner()
	if err != nil {
		return err
	}
	tracker.Finish(result.Name(), string(result.Overall()))
	return nil
}

// printHistory reloads and reprints the stored transcript.
func (r *REPL) printHistory(ctx context.Context) error {
	if r.engine.ChatID() == "" {
		fmt.Println(r.styles.Dim.Render("No active conversation yet."))
		return nil
	}
	if err := r.engine.LoadHistory(ctx); err != nil {
		return err
	}

	for _, msg := range r.engine.Messages() {
		fmt.Printf("%s %s\n", ui.RoleLabel(string(msg.Role)), msg.Content)
	}
	return nil
}

// printChats lists stored chat sessions.
func (r *REPL) printChats(ctx context.Context) error {
	chats, err := r.client.ListChats(ctx, 20)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Println(r.styles.Dim.Render("No chats yet."))
		return nil
	}

	table := ui.NewTable("ID", "TITLE", "MESSAGES", "UPDATED")
	table.SetMaxWidth(1, 40)
	for _, c := range chats {
		table.AddRow(c.ID, c.Title, fmt.Sprintf("%d", c.MessageCount), c.UpdatedAt)
	}
	table.Render()
	return nil
}

// copyLastReply copies the most recent assistant message to the clipboard.
func (r *REPL) copyLastReply() error {
	msgs := r.engine.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == events.RoleAssistant && msgs[i].Content != "" {
			if err := clipboard.WriteAll(msgs[i].Content); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Println(r.styles.Success.Render("✓ Copied last reply to clipboard."))
			return nil
		}
	}
	return fmt.Errorf("nothing to copy yet")
}

// printStatus shows the current session state.
func (r *REPL) printStatus() {
	chatID := r.engine.ChatID()
	if chatID == "" {
		fmt.Println(r.styles.Dim.Render("Conversation: none (first message creates one)"))
	} else {
		fmt.Println(r.styles.Info.Render("Conversation: " + chatID))
	}
	if wf := r.engine.CurrentWorkflow(); wf != nil {
		fmt.Println(r.styles.Info.Render(fmt.Sprintf("Workflow:     %s (%s)", wf.Name, wf.ID)))
	}
	if err := r.engine.LastError(); err != nil {
		fmt.Println(r.styles.Error.Render("Last error:   " + err.Error()))
	}
}

// printWelcome prints the session intro.
func (r *REPL) printWelcome() {
	if chatID := r.engine.ChatID(); chatID != "" {
		fmt.Println(r.styles.Dim.Render("Resuming conversation " + chatID + "."))
	}
	fmt.Println(r.styles.Dim.Render("Type a message to chat, /help for commands, /quit to exit."))
	fmt.Println()
}

// printHelp prints the command reference.
func (r *REPL) printHelp() {
	help := [][2]string{
		{"/help", "Show this help"},
		{"/new", "Start a fresh conversation"},
		{"/history", "Reprint the stored transcript"},
		{"/chats", "List chat sessions"},
		{"/copy", "Copy the last reply to the clipboard"},
		{"/workflow [id]", "Follow a workflow's steps"},
		{"/status", "Show session state"},
		{"/quit", "Exit"},
	}
	for _, h := range help {
		fmt.Printf("  %s  %s\n",
			r.styles.Prompt.Render(fmt.Sprintf("%-15s", h[0])),
			r.styles.Dim.Render(h[1]))
	}
}
