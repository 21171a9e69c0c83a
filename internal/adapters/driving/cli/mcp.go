package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyhall/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask about
your notes and generate flashcards or key terms.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead.

Tools: ask, generate_flashcards, generate_keywords, clear_history
Resources:
  studyhall://users/{userId}/subjects/{subjectId}/notes
  studyhall://users/{userId}/subjects/{subjectId}/history

Examples:
  # Stdio mode (default)
  studyhall mcp serve --user alice

  # HTTP mode (for MCP Inspector, remote access)
  studyhall mcp serve --port 8080

Desktop client configuration:
  {
    "mcpServers": {
      "studyhall": {
        "command": "/path/to/studyhall",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Chat:        chatService,
		Flashcards:  flashcardService,
		Keywords:    keywordService,
		Notes:       noteService,
		DefaultUser: resolveUser(),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
