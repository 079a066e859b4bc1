package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kkdai/youtube/v2"
)

// TextSource produces a piece of text (such as a description) for a video URL
type TextSource interface {
	Name() string
	Text(ctx context.Context, videoURL string) (string, error)
}

// DescriptionChain tries capability-equivalent sources in order until one
// returns a non-empty text
type DescriptionChain struct {
	sources []TextSource
}

// NewDescriptionChain creates a chain over the given sources
func NewDescriptionChain(sources ...TextSource) *DescriptionChain {
	return &DescriptionChain{sources: sources}
}

// Fetch returns the first non-empty description, or "" when every source fails
func (c *DescriptionChain) Fetch(ctx context.Context, videoURL string) string {
	for _, src := range c.sources {
		text, err := src.Text(ctx, videoURL)
		if err != nil {
			slog.Debug("description source failed", "source", src.Name(), "url", videoURL, "error", err)
			continue
		}
		if text != "" {
			slog.Debug("description fetched", "source", src.Name(), "length", len(text))
			return text
		}
	}
	return ""
}

// NativeDescription reads descriptions through the native YouTube client
type NativeDescription struct {
	client *youtube.Client
}

// NewNativeDescription creates a source whose HTTP calls are bounded by timeout
func NewNativeDescription(timeout time.Duration) *NativeDescription {
	return &NativeDescription{
		client: &youtube.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

func (n *NativeDescription) Name() string { return "youtube-client" }

func (n *NativeDescription) Text(ctx context.Context, videoURL string) (string, error) {
	video, err := n.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("fetching video: %w", err)
	}
	return video.Description, nil
}

// YtdlpDescription reads descriptions from yt-dlp's info JSON
type YtdlpDescription struct {
	yt *YouTube
}

// NewYtdlpDescription creates a yt-dlp backed source
func NewYtdlpDescription(yt *YouTube) *YtdlpDescription {
	return &YtdlpDescription{yt: yt}
}

func (y *YtdlpDescription) Name() string { return "yt-dlp" }

func (y *YtdlpDescription) Text(ctx context.Context, videoURL string) (string, error) {
	metadata, err := y.yt.Metadata(ctx, videoURL)
	if err != nil {
		return "", err
	}
	return metadata.Description, nil
}
