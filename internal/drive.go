package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
)

// Fetcher retrieves Google Drive content into a local directory
type Fetcher interface {
	// File downloads a single file and returns its local path
	File(ctx context.Context, id, outputDir string) (string, error)
	// Folder downloads a folder's contents. Individual file failures are
	// tolerated and reported as ErrIncompleteFolder; any other error means
	// nothing could be listed.
	Folder(ctx context.Context, id, outputDir string) error
}

// DriveDownloader classifies Drive links and dispatches them to a Fetcher
type DriveDownloader struct {
	fetcher Fetcher
	ui      UIManager
}

// NewDriveDownloader creates a downloader over the given fetcher
func NewDriveDownloader(fetcher Fetcher, ui UIManager) *DriveDownloader {
	return &DriveDownloader{fetcher: fetcher, ui: ui}
}

// NewFetcher picks the Drive API when an API key is configured and the
// public web endpoints otherwise
func NewFetcher(ctx context.Context, config *Config, ui UIManager) Fetcher {
	if config.DriveAPIKey != "" {
		fetcher, err := NewAPIFetcher(ctx, ui, option.WithAPIKey(config.DriveAPIKey))
		if err == nil {
			return fetcher
		}
		slog.Warn("falling back to web downloads for Drive", "error", err)
	}
	return NewWebFetcher(config.Timeout(), ui)
}

// Download retrieves one Drive URL. Folders return an empty path.
func (d *DriveDownloader) Download(ctx context.Context, url, outputDir string) (string, error) {
	return d.download(ctx, Classify(url), outputDir)
}

// download dispatches an already classified link. Leftover partial files are
// only finalized after the fetcher succeeded; a failed or interrupted
// transfer keeps its .part file so the next run resumes it.
func (d *DriveDownloader) download(ctx context.Context, link DriveLink, outputDir string) (string, error) {
	if err := EnsureDirs(outputDir); err != nil {
		return "", err
	}
	slog.Debug("downloading drive link", "link", link.String())

	var path string
	switch link.Kind {
	case DriveKindFolder:
		err := d.fetcher.Folder(ctx, link.ID, outputDir)
		if errors.Is(err, ErrIncompleteFolder) {
			// the fetched entries count; the failed ones keep their .part files
			slog.Warn("drive folder partly downloaded", "id", link.ID, "error", err)
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("downloading folder %s: %w", link.ID, err)
		}
	case DriveKindFile:
		p, err := d.downloadFile(ctx, link.ID, outputDir)
		if err != nil {
			return "", err
		}
		path = p
	default:
		id, ok := FuzzyDriveID(link.URL)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNoDriveID, link.URL)
		}
		p, err := d.downloadFile(ctx, id, outputDir)
		if err != nil {
			return "", err
		}
		path = p
	}

	FinalizePartials(outputDir)
	return path, nil
}

func (d *DriveDownloader) downloadFile(ctx context.Context, id, outputDir string) (string, error) {
	path, err := d.fetcher.File(ctx, id, outputDir)
	if err != nil {
		return "", fmt.Errorf("downloading file %s: %w", id, err)
	}
	return path, nil
}

// DownloadAll attempts every link in order. A failing link is reported and
// recorded; the remaining links are still attempted.
func (d *DriveDownloader) DownloadAll(ctx context.Context, urls []string, outputDir string) []DriveResult {
	results := make([]DriveResult, 0, len(urls))

	for _, url := range urls {
		link := Classify(url)
		if ctx.Err() != nil {
			results = append(results, DriveResult{Link: link, Err: ctx.Err()})
			continue
		}

		path, err := d.download(ctx, link, outputDir)
		results = append(results, DriveResult{Link: link, Path: path, Err: err})

		if err != nil {
			slog.Warn("drive download failed", "url", url, "error", err)
			d.ui.Failure("Failed to download %s: %v", url, err)
			continue
		}
		d.ui.Success("Downloaded Drive content from %s", url)
	}

	return results
}

// failedCount counts results carrying an error
func failedCount(results []DriveResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
