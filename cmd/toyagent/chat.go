package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyagent/cli/internal/chat"
	"github.com/toyagent/cli/internal/config"
	"github.com/toyagent/cli/internal/interactive"
	"github.com/toyagent/cli/internal/tui"
	"github.com/toyagent/cli/internal/ui"
)

// chatCmd is the parent for chat operations. Bare `toyagent chat` starts an
// interactive session.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent",
	Long: `Chat with the agent.

Without a subcommand this starts an interactive session: in a terminal you
can pick a conversation to resume, then type messages and stream replies.
Workflows the agent starts are followed step by step.`,
	RunE: runInteractiveChat,
}

// chatSendCmd sends a single message and streams the reply.
var chatSendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and stream the reply",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatSend,
}

// chatListCmd lists chat sessions.
var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chat sessions",
	RunE:  runChatList,
}

// chatHistoryCmd prints a chat transcript.
var chatHistoryCmd = &cobra.Command{
	Use:   "history [chat]",
	Short: "Show a chat transcript",
	Long:  "Show a chat transcript. Defaults to the active conversation; pass an alias or id for another one.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChatHistory,
}

// chatNewCmd starts a fresh conversation, optionally creating it up front
// with a title.
var chatNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Start a fresh conversation",
	Long:  "Start a fresh conversation. Without a title the next message creates one; with a title the chat is created immediately and becomes the active conversation.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := config.NewSessionStore()

		if len(args) == 0 {
			if err := session.ClearActiveChat(); err != nil {
				return err
			}
			ui.PrintSuccess("Next message will start a new conversation.")
			return nil
		}

		client, _ := newClient(cmd)
		created, err := client.CreateChat(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := session.SetActiveChat(created.ID); err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(created)
		}
		ui.PrintSuccess("Created chat %s (%q); it is now the active conversation.", created.ID, created.Title)
		return nil
	},
}

// chatDeleteCmd deletes a chat session on the backend.
var chatDeleteCmd = &cobra.Command{
	Use:   "delete <chat>",
	Short: "Delete a chat session and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatDelete,
}

func init() {
	chatSendCmd.Flags().String("chat", "", "Chat alias or id to continue (defaults to the active conversation)")
	chatSendCmd.Flags().Bool("no-follow", false, "Do not follow a workflow the reply starts")
	chatDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatNewCmd)
	chatCmd.AddCommand(chatDeleteCmd)
}

// runInteractiveChat starts the REPL, optionally via the conversation
// picker.
func runInteractiveChat(cmd *cobra.Command, args []string) error {
	client, _ := newClient(cmd)
	session := config.NewSessionStore()
	engine := chat.NewEngine(client)

	quiet, _ := cmd.Flags().GetBool("quiet")
	if active := session.ActiveChat(); active != "" {
		engine.SetChatID(active)
	} else if tui.ShouldRunTUI(jsonOutput(cmd), quiet) {
		pick, err := tui.RunChatPicker(client)
		if err != nil {
			return err
		}
		if pick.Aborted {
			return nil
		}
		if pick.ChatID != "" {
			engine.SetChatID(pick.ChatID)
			_ = session.SetActiveChat(pick.ChatID)
		}
	}

	return interactive.NewREPL(client, engine, session).Run(cmd.Context())
}

// runChatSend sends one message, streaming the reply to stdout.
func runChatSend(cmd *cobra.Command, args []string) error {
	client, cfg := newClient(cmd)
	session := config.NewSessionStore()
	engine := chat.NewEngine(client)

	target, _ := cmd.Flags().GetString("chat")
	switch {
	case target != "":
		engine.SetChatID(cfg.ResolveChat(target))
	case session.ActiveChat() != "":
		engine.SetChatID(session.ActiveChat())
	}

	asJSON := jsonOutput(cmd)
	if !asJSON {
		engine.OnDelta = func(text string) { fmt.Print(text) }
	}

	err := engine.SendMessage(cmd.Context(), args[0])
	if !asJSON {
		fmt.Println()
	}
	if err != nil {
		return err
	}
	_ = session.SetActiveChat(engine.ChatID())

	wf := engine.CurrentWorkflow()
	if asJSON {
		out := map[string]interface{}{
			"chat_id": engine.ChatID(),
		}
		if msgs := engine.Messages(); len(msgs) > 0 {
			out["reply"] = msgs[len(msgs)-1].Content
		}
		if wf != nil {
			out["workflow_id"] = wf.ID
			out["workflow_name"] = wf.Name
		}
		return printJSON(out)
	}

	noFollow, _ := cmd.Flags().GetBool("no-follow")
	if wf != nil && !noFollow {
		ui.PrintInfo("Workflow %q started (%s), following it:", wf.Name, wf.ID)
		return followWorkflow(cmd, client, wf.ID)
	}
	if wf != nil {
		ui.PrintDim("Workflow %s started; `toyagent workflow watch %s` to follow it.", wf.ID, wf.ID)
	}
	return nil
}

// runChatList lists chats as a table or JSON.
func runChatList(cmd *cobra.Command, args []string) error {
	client, _ := newClient(cmd)

	chats, err := client.ListChats(cmd.Context(), 50)
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(chats)
	}
	if len(chats) == 0 {
		ui.PrintDim("No chats yet. Start one with `toyagent chat`.")
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

// runChatHistory prints the transcript of a conversation.
func runChatHistory(cmd *cobra.Command, args []string) error {
	client, cfg := newClient(cmd)

	chatID := ""
	if len(args) > 0 {
		chatID = cfg.ResolveChat(args[0])
	} else {
		chatID = config.NewSessionStore().ActiveChat()
	}
	if chatID == "" {
		return fmt.Errorf("no active conversation; pass a chat id or alias")
	}

	full, err := client.GetChat(cmd.Context(), chatID)
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(full)
	}

	if full.Title != "" {
		ui.PrintInfo("%s", full.Title)
		ui.Println()
	}
	for _, msg := range full.Messages {
		fmt.Printf("%s %s\n", ui.RoleLabel(msg.Sender), msg.Content)
		if msg.WorkflowID != "" {
			ui.PrintDim("  └ workflow %s", msg.WorkflowID)
		}
	}
	return nil
}

// runChatDelete deletes a chat after confirmation.
func runChatDelete(cmd *cobra.Command, args []string) error {
	client, cfg := newClient(cmd)
	chatID := cfg.ResolveChat(args[0])

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		confirmed, err := ui.PromptConfirm(
			fmt.Sprintf("Delete chat %s and all its messages?", chatID), false)
		if err != nil {
			return err
		}
		if !confirmed {
			ui.PrintDim("Aborted.")
			return nil
		}
	}

	if err := client.DeleteChat(cmd.Context(), chatID); err != nil {
		return err
	}

	session := config.NewSessionStore()
	if session.ActiveChat() == chatID {
		_ = session.ClearActiveChat()
	}
	ui.PrintSuccess("Deleted chat %s.", chatID)
	return nil
}
