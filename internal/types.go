package internal

import (
	"fmt"
	"strings"
)

// DriveKind represents the type of Google Drive resource a link points at
type DriveKind int

const (
	DriveKindUnknown DriveKind = iota
	DriveKindFile
	DriveKindFolder
)

// String returns a human-readable representation of the drive kind
func (k DriveKind) String() string {
	switch k {
	case DriveKindFile:
		return "file"
	case DriveKindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// DriveLink is a classified Google Drive URL
type DriveLink struct {
	URL  string
	Kind DriveKind
	ID   string
}

// String returns a formatted representation of the link
func (l DriveLink) String() string {
	if l.Kind == DriveKindUnknown {
		return fmt.Sprintf("DriveLink{kind=%s, url=%s}", l.Kind, l.URL)
	}
	return fmt.Sprintf("DriveLink{kind=%s, id=%s, url=%s}", l.Kind, l.ID, l.URL)
}

// DriveResult records the outcome of one Drive link download
type DriveResult struct {
	Link DriveLink
	Path string
	Err  error
}

// MediaFormat is the requested output container or codec
type MediaFormat string

const (
	FormatMP4   MediaFormat = "mp4"
	FormatVideo MediaFormat = "video"
	FormatMP3   MediaFormat = "mp3"
	FormatWAV   MediaFormat = "wav"
	FormatFix   MediaFormat = "fix"
)

// ParseFormat normalizes a --format value
func ParseFormat(s string) MediaFormat {
	return MediaFormat(strings.ToLower(strings.TrimSpace(s)))
}

// IsVideo reports whether the format keeps the video stream
func (f MediaFormat) IsVideo() bool {
	return f == FormatMP4 || f == FormatVideo
}

// DownloadRequest describes a single media download
type DownloadRequest struct {
	TargetURL string
	Format    MediaFormat
	Quality   string
	Speed     float64
	OutputDir string
}
