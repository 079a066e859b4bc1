package internal

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestMCPFindDriveLinks(t *testing.T) {
	f := newAppFixture(t,
		"https://drive.google.com/drive/folders/folderid123",
		"https://drive.google.com/a/example.com/file/d/fuzzyid1234/edit https://drive.google.com/file/d/fileid12345",
	)
	s := NewMCPServer(f.app, "test")

	result, err := s.handleFindDriveLinks(context.Background(), toolRequest("find_drive_links", map[string]any{
		"url": "https://www.youtube.com/watch?v=abc",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "folder\tfolderid123\thttps://drive.google.com/drive/folders/folderid123")
	assert.Contains(t, text, "file\tfileid12345\thttps://drive.google.com/file/d/fileid12345")
	assert.Empty(t, f.fetcher.files, "lookups never download")
}

func TestMCPFindDriveLinksErrors(t *testing.T) {
	f := newAppFixture(t, "")
	s := NewMCPServer(f.app, "test")

	result, err := s.handleFindDriveLinks(context.Background(), toolRequest("find_drive_links", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleFindDriveLinks(context.Background(), toolRequest("find_drive_links", map[string]any{
		"url": "https://youtu.be/abc",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleFindDriveLinks(context.Background(), toolRequest("find_drive_links", map[string]any{
		"url": "https://www.youtube.com/watch?v=abc",
	}))
	require.NoError(t, err)
	assert.Equal(t, "No Google Drive links found.", resultText(t, result))
}

func TestMCPGetDescription(t *testing.T) {
	f := newAppFixture(t, "Tracklist and samples")
	s := NewMCPServer(f.app, "test")

	result, err := s.handleGetDescription(context.Background(), toolRequest("get_video_description", map[string]any{
		"url": "https://youtu.be/abc",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Tracklist and samples", resultText(t, result))

	empty := NewMCPServer(newAppFixture(t, "").app, "test")
	result, err = empty.handleGetDescription(context.Background(), toolRequest("get_video_description", map[string]any{
		"url": "https://youtu.be/abc",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
