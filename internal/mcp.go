package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"ytgrab",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("find_drive_links",
		mcp.WithDescription("Scan a YouTube video's description and top comments for Google Drive links. Returns one line per link with its kind (file, folder or unknown) and Drive ID. Does not download anything."),
		mcp.WithString("url",
			mcp.Description("Direct YouTube video URL (https://www.youtube.com/watch?v=...)"),
			mcp.Required(),
		),
	), s.handleFindDriveLinks)

	s.mcpServer.AddTool(mcp.NewTool("get_video_description",
		mcp.WithDescription("Fetch the description text of a YouTube video."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL"),
			mcp.Required(),
		),
	), s.handleGetDescription)
}

// handleFindDriveLinks implements the find_drive_links tool
func (s *MCPServer) handleFindDriveLinks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	if !IsDirectVideoURL(url) {
		return mcp.NewToolResultError(ErrDriveNeedsVideoURL.Error()), nil
	}

	links := s.app.ScanDriveLinks(ctx, url)
	if len(links) == 0 {
		return mcp.NewToolResultText("No Google Drive links found."), nil
	}

	var buf strings.Builder
	for _, link := range links {
		if link.Kind == DriveKindUnknown {
			buf.WriteString(fmt.Sprintf("%s\t%s\n", link.Kind, link.URL))
			continue
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\n", link.Kind, link.ID, link.URL))
	}

	return mcp.NewToolResultText(buf.String()), nil
}

// handleGetDescription implements the get_video_description tool
func (s *MCPServer) handleGetDescription(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	description := s.app.descriptions.Fetch(ctx, url)
	if description == "" {
		return mcp.NewToolResultError("no description available for " + url), nil
	}

	return mcp.NewToolResultText(description), nil
}

// Start serves MCP over stdio until the client disconnects
func (s *MCPServer) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return server.ServeStdio(s.mcpServer)
}
