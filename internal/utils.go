package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// directVideoPrefix is the only URL shape accepted for Drive scraping without --link
const directVideoPrefix = "https://www.youtube.com/watch?v="

var qualityAliases = map[string]string{
	"4k":    "2160",
	"1080p": "1080",
	"720p":  "720",
	"480p":  "480",
	"360p":  "360",
	"240p":  "240",
}

// NormalizeQuality maps resolution aliases like "4k" or "720p" to a height.
// Unknown tokens are returned unchanged.
func NormalizeQuality(quality string) string {
	if mapped, ok := qualityAliases[strings.ToLower(quality)]; ok {
		return mapped
	}
	return quality
}

// ParseSpeed parses a playback speed such as "1.5x" or "2.0"
func ParseSpeed(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "x")
	speed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing speed %q: %w", s, err)
	}
	if speed <= 0 {
		return 0, fmt.Errorf("speed must be positive, got %q", s)
	}
	return speed, nil
}

// formatSpeed renders a speed factor for ffmpeg filter arguments
func formatSpeed(speed float64) string {
	return strconv.FormatFloat(speed, 'f', -1, 64)
}

// IsDirectVideoURL reports whether the URL points at a single watch page
func IsDirectVideoURL(u string) bool {
	return strings.HasPrefix(u, directVideoPrefix)
}

// VideoIDExtractor extracts video IDs from YouTube URLs
type VideoIDExtractor func(string) (string, error)

// Default implementation of video ID extraction
var getVideoID VideoIDExtractor = func(youtubeURL string) (string, error) {
	youtubeURL = strings.TrimSpace(youtubeURL)
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	switch u.Host {
	case "www.youtube.com", "youtube.com", "m.youtube.com", "youtu.be":
	default:
		return "", fmt.Errorf("not a YouTube URL: %s", youtubeURL)
	}

	if v := u.Query().Get("v"); v != "" {
		return v, nil
	}

	if strings.Contains(u.Path, "/playlist") {
		return "", fmt.Errorf("this is a playlist URL, not a video URL: %s", youtubeURL)
	}

	parts := strings.Split(u.Path, "/")
	if len(parts) > 0 && parts[len(parts)-1] != "" {
		return parts[len(parts)-1], nil
	}

	return "", fmt.Errorf("could not extract video ID from URL: %s", youtubeURL)
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return rendered, nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !errors.Is(err, os.ErrNotExist)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// cleanupFiles removes temporary files
func cleanupFiles(files ...string) {
	for _, file := range files {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove file %s: %v\n", file, err)
		}
	}
}
