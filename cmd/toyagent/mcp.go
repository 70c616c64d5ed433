package main

import (
	"github.com/spf13/cobra"

	"github.com/toyagent/cli/internal/mcp"
)

// mcpCmd is the parent for MCP server operations.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server for AI agent integration",
}

// mcpServeCmd starts the MCP server over stdio.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Start the MCP (Model Context Protocol) server over stdio.

Exposes send_message, list_chats, get_chat, and watch_workflow as tools an
AI agent can call. All output on stdout is protocol traffic; run with
--debug to log to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		devMode, _ := cmd.Flags().GetBool("dev")
		server, err := mcp.NewServer(version, devMode)
		if err != nil {
			return err
		}
		return server.Run(cmd.Context())
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}
