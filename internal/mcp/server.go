// Package mcp provides the MCP (Model Context Protocol) server implementation.
//
// This package implements an MCP server that exposes ToyAgent CLI
// functionality as tools that can be called by AI agents via the MCP
// protocol.
package mcp

import (
	"context"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/toyagent/cli/internal/api"
	"github.com/toyagent/cli/internal/chat"
	"github.com/toyagent/cli/internal/config"
	"github.com/toyagent/cli/internal/workflow"
)

// Server wraps the MCP server with ToyAgent-specific functionality.
type Server struct {
	mcpServer *mcp.Server
	apiClient *api.Client
	config    *config.ProjectConfig
	version   string
}

// NewServer creates a new ToyAgent MCP server.
//
// Parameters:
//   - version: The CLI version string
//   - devMode: Whether to target the local development backend
//
// Returns:
//   - *Server: A new server instance
//   - error: Any error that occurred during initialization
func NewServer(version string, devMode bool) (*Server, error) {
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}

	var cfg *config.ProjectConfig
	configPath := filepath.Join(workDir, ".toyagent", "config.yaml")
	cfg, _ = config.LoadProjectConfig(configPath)

	s := &Server{
		apiClient: api.NewClient(config.GetBackendURL(cfg, devMode)),
		config:    cfg,
		version:   version,
	}

	s.mcpServer = mcp.NewServer(
		&mcp.Implementation{
			Name:    "toyagent",
			Version: version,
		},
		nil,
	)

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: Any error that occurred during execution
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// registerTools registers all ToyAgent tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "send_message",
		Description: "Send a message to the agent and wait for the full streamed reply. Creates a new chat unless chat_id is given. Returns the reply and, if the agent started a workflow, its id.",
	}, s.handleSendMessage)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_chats",
		Description: "List chat sessions, most recent first.",
	}, s.handleListChats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_chat",
		Description: "Get a chat transcript by id, including messages and any workflows started from it.",
	}, s.handleGetChat)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "watch_workflow",
		Description: "Follow a workflow's status stream until it completes or fails. Returns the final per-step statuses.",
	}, s.handleWatchWorkflow)
}

// SendMessageInput defines the input parameters for the send_message tool.
type SendMessageInput struct {
	Content string `json:"content" jsonschema:"description=The message to send to the agent"`
	ChatID  string `json:"chat_id,omitempty" jsonschema:"description=Existing chat to continue (alias from .toyagent/config.yaml or id). Omit to start a new chat."`
}

// SendMessageOutput defines the output for the send_message tool.
type SendMessageOutput struct {
	Success      bool   `json:"success"`
	ChatID       string `json:"chat_id,omitempty"`
	Reply        string `json:"reply,omitempty"`
	WorkflowID   string `json:"workflow_id,omitempty"`
	WorkflowName string `json:"workflow_name,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// handleSendMessage handles the send_message tool call.
func (s *Server) handleSendMessage(ctx context.Context, req *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, SendMessageOutput, error) {
	if input.Content == "" {
		return nil, SendMessageOutput{
			Success:      false,
			ErrorMessage: "content is required",
		}, nil
	}

	engine := chat.NewEngine(s.apiClient)
	if input.ChatID != "" {
		engine.SetChatID(s.config.ResolveChat(input.ChatID))
	}

	if err := engine.SendMessage(ctx, input.Content); err != nil {
		return nil, SendMessageOutput{
			Success:      false,
			ChatID:       engine.ChatID(),
			ErrorMessage: err.Error(),
		}, nil
	}

	out := SendMessageOutput{
		Success: true,
		ChatID:  engine.ChatID(),
	}
	msgs := engine.Messages()
	if len(msgs) > 0 {
		out.Reply = msgs[len(msgs)-1].Content
	}
	if wf := engine.CurrentWorkflow(); wf != nil {
		out.WorkflowID = wf.ID
		out.WorkflowName = wf.Name
	}
	return nil, out, nil
}

// ListChatsInput defines the input parameters for the list_chats tool.
type ListChatsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum number of chats to return (default 20)"`
}

// ChatInfo is one chat in the list_chats output.
type ChatInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	MessageCount int    `json:"message_count"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// ListChatsOutput defines the output for the list_chats tool.
type ListChatsOutput struct {
	Success      bool       `json:"success"`
	Chats        []ChatInfo `json:"chats,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// handleListChats handles the list_chats tool call.
func (s *Server) handleListChats(ctx context.Context, req *mcp.CallToolRequest, input ListChatsInput) (*mcp.CallToolResult, ListChatsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	chats, err := s.apiClient.ListChats(ctx, limit)
	if err != nil {
		return nil, ListChatsOutput{Success: false, ErrorMessage: err.Error()}, nil
	}

	out := ListChatsOutput{Success: true}
	for _, c := range chats {
		out.Chats = append(out.Chats, ChatInfo{
			ID:           c.ID,
			Title:        c.Title,
			MessageCount: c.MessageCount,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return nil, out, nil
}

// GetChatInput defines the input parameters for the get_chat tool.
type GetChatInput struct {
	ChatID string `json:"chat_id" jsonschema:"description=Chat alias (from .toyagent/config.yaml) or id"`
}

// TranscriptMessage is one message in the get_chat output.
type TranscriptMessage struct {
	Sender     string `json:"sender"`
	Content    string `json:"content"`
	WorkflowID string `json:"workflow_id,omitempty"`
}

// GetChatOutput defines the output for the get_chat tool.
type GetChatOutput struct {
	Success      bool                `json:"success"`
	ChatID       string              `json:"chat_id,omitempty"`
	Title        string              `json:"title,omitempty"`
	Messages     []TranscriptMessage `json:"messages,omitempty"`
	WorkflowIDs  []string            `json:"workflow_ids,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// handleGetChat handles the get_chat tool call.
func (s *Server) handleGetChat(ctx context.Context, req *mcp.CallToolRequest, input GetChatInput) (*mcp.CallToolResult, GetChatOutput, error) {
	if input.ChatID == "" {
		return nil, GetChatOutput{
			Success:      false,
			ErrorMessage: "chat_id is required",
		}, nil
	}

	full, err := s.apiClient.GetChat(ctx, s.config.ResolveChat(input.ChatID))
	if err != nil {
		return nil, GetChatOutput{Success: false, ErrorMessage: err.Error()}, nil
	}

	out := GetChatOutput{
		Success: true,
		ChatID:  full.ID,
		Title:   full.Title,
	}
	for _, m := range full.Messages {
		out.Messages = append(out.Messages, TranscriptMessage{
			Sender:     m.Sender,
			Content:    m.Content,
			WorkflowID: m.WorkflowID,
		})
	}
	for _, wf := range full.Workflows {
		out.WorkflowIDs = append(out.WorkflowIDs, wf.ID)
	}
	return nil, out, nil
}

// WatchWorkflowInput defines the input parameters for the watch_workflow tool.
type WatchWorkflowInput struct {
	WorkflowID string `json:"workflow_id" jsonschema:"description=Workflow alias (from .toyagent/config.yaml) or id"`
}

// WatchWorkflowOutput defines the output for the watch_workflow tool.
type WatchWorkflowOutput struct {
	Success      bool              `json:"success"`
	WorkflowID   string            `json:"workflow_id,omitempty"`
	Name         string            `json:"name,omitempty"`
	Status       string            `json:"status,omitempty"`
	Steps        map[string]string `json:"steps,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// handleWatchWorkflow handles the watch_workflow tool call.
func (s *Server) handleWatchWorkflow(ctx context.Context, req *mcp.CallToolRequest, input WatchWorkflowInput) (*mcp.CallToolResult, WatchWorkflowOutput, error) {
	if input.WorkflowID == "" {
		return nil, WatchWorkflowOutput{
			Success:      false,
			ErrorMessage: "workflow_id is required",
		}, nil
	}

	workflowID := s.config.ResolveWorkflow(input.WorkflowID)
	tracker, err := workflow.NewWatcher(s.apiClient).Watch(ctx, workflowID)
	if err != nil {
		return nil, WatchWorkflowOutput{
			Success:      false,
			WorkflowID:   workflowID,
			ErrorMessage: err.Error(),
		}, nil
	}

	steps := make(map[string]string)
	for _, step := range tracker.Steps() {
		steps[step.ID] = string(step.Status)
	}
	return nil, WatchWorkflowOutput{
		Success:    true,
		WorkflowID: workflowID,
		Name:       tracker.Name(),
		Status:     string(tracker.Overall()),
		Steps:      steps,
	}, nil
}
