// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents drive recommendation conversations over stdio
package commands

import (
	"context"
	"fmt"

	"github.com/harper/dongne/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs dongne as an MCP (Model Context Protocol) server over stdio,
so LLM agents like Claude can hold a recommendation conversation
on a user's behalf.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  dongne mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "dongne": {
  #       "command": "dongne",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	server := mcpserver.NewMCPServer("dongne", versionInfo.Version)
	mcp.RegisterTools(server, a.chat, a.log)

	a.log.Info("MCP server starting on stdio", zap.Bool("offline", a.cfg.Offline()))
	if err := mcpserver.ServeStdio(server); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}
