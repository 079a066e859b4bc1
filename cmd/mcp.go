package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytgrab/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run minimal MCP server for ytgrab",
	Long: `Run a Model Context Protocol (MCP) server over stdio that exposes ytgrab lookups as tools.

The MCP server provides two tools:
- find_drive_links: List Google Drive links in a video's description and top comments
- get_video_description: Fetch the description text of a video

Nothing is downloaded through MCP.`,
	Example: `  # Run MCP server with stdio transport
  ytgrab mcp`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(cmd.Context(), config, internal.WithUI(internal.NewSilentUI(io.Discard)))

		mcpServer := internal.NewMCPServer(app, version)

		// stdout carries the protocol
		if !config.Quiet {
			fmt.Fprintln(os.Stderr, "Starting ytgrab MCP server on stdio...")
		}

		// Start the server (this will block until the client disconnects)
		return mcpServer.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
