package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// tempSuffix is appended to the original name while re-encoding
const tempSuffix = ".temp.mp4"

// Fixer re-encodes downloaded videos to H.264/AAC using FFmpeg
type Fixer struct {
	cmdRunner  CommandRunner
	ffmpegPath string
	ui         UIManager
}

// NewFixer creates a new fixer
func NewFixer(cmdRunner CommandRunner, ffmpegPath string, ui UIManager) *Fixer {
	if ffmpegPath == "" {
		ffmpegPath = DefaultFFmpegPath
	}
	return &Fixer{
		cmdRunner:  cmdRunner,
		ffmpegPath: ffmpegPath,
		ui:         ui,
	}
}

// FixDir re-encodes every .mp4 in dir. It returns the number of files fixed
// and failed; a missing directory is reported, not returned as an error.
func (f *Fixer) FixDir(ctx context.Context, dir string) (fixed, failed int, err error) {
	if !FileExists(dir) {
		f.ui.Failure("Download folder %s does not exist", dir)
		return 0, 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("reading download folder: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".mp4") || strings.HasSuffix(name, tempSuffix) {
			continue
		}
		if ctx.Err() != nil {
			return fixed, failed, ctx.Err()
		}

		f.ui.Printf("Fixing %s...\n", name)
		if err := f.Fix(ctx, filepath.Join(dir, name)); err != nil {
			slog.Warn("fix failed", "file", name, "error", err)
			f.ui.Failure("Failed to fix %s", name)
			failed++
			continue
		}
		f.ui.Success("Fixed %s", name)
		fixed++
	}

	return fixed, failed, nil
}

// Fix re-encodes a single file into a temporary sibling and only replaces
// the original when FFmpeg succeeds
func (f *Fixer) Fix(ctx context.Context, inputPath string) error {
	tempPath := inputPath + tempSuffix

	output, err := f.cmdRunner.Run(ctx, f.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		tempPath)
	if err != nil {
		cleanupFiles(tempPath)
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(output))
	}

	if err := os.Rename(tempPath, inputPath); err != nil {
		cleanupFiles(tempPath)
		return fmt.Errorf("replacing original: %w", err)
	}
	return nil
}
