package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// PartSuffix marks an in-progress download
const PartSuffix = ".part"

// FinalizePartials renames leftover partial downloads in dir to their final
// names when no file already occupies that name. Failures are skipped.
func FinalizePartials(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("skipping partial finalization", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, PartSuffix) {
			continue
		}

		partPath := filepath.Join(dir, name)
		finalPath := filepath.Join(dir, strings.TrimSuffix(name, PartSuffix))
		if FileExists(finalPath) {
			continue
		}

		if err := os.Rename(partPath, finalPath); err != nil {
			slog.Debug("could not finalize partial file", "path", partPath, "error", err)
			continue
		}
		slog.Debug("finalized partial file", "path", finalPath)
	}
}
