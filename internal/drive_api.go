package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	driveFolderMimeType = "application/vnd.google-apps.folder"
	driveNativePrefix   = "application/vnd.google-apps."
)

// APIFetcher downloads Drive content through the Drive API v3
type APIFetcher struct {
	service *drive.Service
	ui      UIManager
}

// NewAPIFetcher creates a Drive API backed fetcher
func NewAPIFetcher(ctx context.Context, ui UIManager, opts ...option.ClientOption) (*APIFetcher, error) {
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Drive API client: %w", err)
	}
	return &APIFetcher{service: service, ui: ui}, nil
}

// File downloads a single file by ID, resuming a leftover .part file
func (a *APIFetcher) File(ctx context.Context, id, outputDir string) (string, error) {
	meta, err := a.service.Files.Get(id).
		Fields("id", "name", "mimeType", "size").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("reading file metadata: %w", err)
	}
	if strings.HasPrefix(meta.MimeType, driveNativePrefix) {
		return "", fmt.Errorf("%s is a native Google document (%s) and cannot be downloaded directly", meta.Name, meta.MimeType)
	}

	name := sanitizeFilename(meta.Name, id)
	finalPath := filepath.Join(outputDir, name)
	if FileExists(finalPath) {
		a.ui.Printf("Skipping %s, already downloaded\n", name)
		return finalPath, nil
	}

	partPath := finalPath + PartSuffix
	call := a.service.Files.Get(id).SupportsAllDrives(true).Context(ctx)
	if info, statErr := os.Stat(partPath); statErr == nil && info.Size() > 0 {
		call.Header().Set("Range", fmt.Sprintf("bytes=%d-", info.Size()))
		slog.Debug("resuming drive download", "id", id, "offset", info.Size())
	}

	resp, err := call.Download()
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", name, err)
	}
	defer resp.Body.Close()

	if err := writePart(a.ui, resp, partPath, name); err != nil {
		return "", err
	}
	if err := os.Rename(partPath, finalPath); err != nil {
		return "", fmt.Errorf("finalizing %s: %w", name, err)
	}
	return finalPath, nil
}

// Folder downloads every file under a folder, recursing into sub-folders.
// Individual failures are logged and skipped, and reported together as
// ErrIncompleteFolder.
func (a *APIFetcher) Folder(ctx context.Context, id, outputDir string) error {
	var files []*drive.File
	err := a.service.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", id)).
		Fields("nextPageToken", "files(id, name, mimeType)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			files = append(files, page.Files...)
			return nil
		})
	if err != nil {
		return fmt.Errorf("listing folder: %w", err)
	}

	if err := EnsureDirs(outputDir); err != nil {
		return err
	}

	failed := 0
	for _, f := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if f.MimeType == driveFolderMimeType {
			subDir := filepath.Join(outputDir, sanitizeFilename(f.Name, f.Id))
			if err := a.Folder(ctx, f.Id, subDir); err != nil {
				slog.Warn("drive sub-folder incomplete", "id", f.Id, "error", err)
				failed++
				continue
			}
			FinalizePartials(subDir)
			continue
		}

		if _, err := a.File(ctx, f.Id, outputDir); err != nil {
			slog.Warn("skipping drive file", "id", f.Id, "name", f.Name, "error", err)
			a.ui.Failure("Failed to download %s: %v", f.Name, err)
			failed++
		}
	}
	return incompleteFolder(failed, len(files))
}
