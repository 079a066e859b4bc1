package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

const (
	driveDownloadURL = "https://drive.google.com/uc"
	driveFolderURL   = "https://drive.google.com/embeddedfolderview"
	driveUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// maxConfirmHops bounds how many interstitial pages are followed
	maxConfirmHops = 3
)

var errNotDownloadable = errors.New("drive did not offer a download (file may be private or over quota)")

// WebFetcher downloads public Drive content through the web endpoints,
// keeping cookies across requests so confirmation pages can be passed
type WebFetcher struct {
	client      *http.Client
	ui          UIManager
	downloadURL string
	folderURL   string
}

// NewWebFetcher creates a fetcher whose connection setup and response
// headers are bounded by timeout. Body transfer is not bounded.
func NewWebFetcher(timeout time.Duration, ui UIManager) *WebFetcher {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	return &WebFetcher{
		client:      &http.Client{Jar: jar, Transport: transport},
		ui:          ui,
		downloadURL: driveDownloadURL,
		folderURL:   driveFolderURL,
	}
}

// File downloads a single file by ID, resuming a leftover .part file
func (w *WebFetcher) File(ctx context.Context, id, outputDir string) (string, error) {
	resp, err := w.openDownload(ctx, id)
	if err != nil {
		return "", err
	}

	name := filenameFromResponse(resp, id)
	finalPath := filepath.Join(outputDir, name)
	if FileExists(finalPath) {
		resp.Body.Close()
		w.ui.Printf("Skipping %s, already downloaded\n", name)
		return finalPath, nil
	}

	partPath := finalPath + PartSuffix
	if info, statErr := os.Stat(partPath); statErr == nil && info.Size() > 0 {
		resp.Body.Close()
		resp, err = w.resume(ctx, resp.Request.URL.String(), info.Size())
		if err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	if err := writePart(w.ui, resp, partPath, name); err != nil {
		return "", err
	}

	if err := os.Rename(partPath, finalPath); err != nil {
		return "", fmt.Errorf("finalizing %s: %w", name, err)
	}
	return finalPath, nil
}

// openDownload requests the file and follows confirmation pages until the
// response carries the file itself
func (w *WebFetcher) openDownload(ctx context.Context, id string) (*http.Response, error) {
	target := w.downloadURL + "?" + url.Values{"export": {"download"}, "id": {id}}.Encode()

	for hop := 0; hop < maxConfirmHops; hop++ {
		resp, err := w.get(ctx, target, nil)
		if err != nil {
			return nil, err
		}
		if resp.Header.Get("Content-Disposition") != "" || !isHTML(resp) {
			return resp, nil
		}

		next, err := confirmURL(resp)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		slog.Debug("following drive confirmation page", "id", id, "next", next)
		target = next
	}

	return nil, errNotDownloadable
}

// resume re-requests the file from offset, falling back to a full body
// when the server ignores the range
func (w *WebFetcher) resume(ctx context.Context, target string, offset int64) (*http.Response, error) {
	header := http.Header{"Range": {fmt.Sprintf("bytes=%d-", offset)}}
	resp, err := w.get(ctx, target, header)
	if err != nil {
		return nil, err
	}
	slog.Debug("resuming drive download", "url", target, "offset", offset, "status", resp.StatusCode)
	return resp, nil
}

// writePart streams a response body into partPath, appending on 206 responses
func writePart(ui UIManager, resp *http.Response, partPath, name string) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resp.StatusCode == http.StatusPartialContent {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(partPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", partPath, err)
	}

	bar := ui.NewBytesBar(resp.ContentLength, name)
	_, copyErr := io.Copy(io.MultiWriter(f, bar), resp.Body)
	bar.Finish()

	if closeErr := f.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("writing %s: %w", name, copyErr)
	}
	return nil
}

// Folder downloads every file listed in a public folder, recursing into
// sub-folders. Individual failures are logged and skipped, and reported
// together as ErrIncompleteFolder.
func (w *WebFetcher) Folder(ctx context.Context, id, outputDir string) error {
	entries, err := w.listFolder(ctx, id)
	if err != nil {
		return err
	}
	if err := EnsureDirs(outputDir); err != nil {
		return err
	}

	failed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch entry.Kind {
		case DriveKindFolder:
			subDir := filepath.Join(outputDir, sanitizeFilename(entry.Title, entry.ID))
			if err := w.Folder(ctx, entry.ID, subDir); err != nil {
				slog.Warn("drive sub-folder incomplete", "id", entry.ID, "error", err)
				failed++
				continue
			}
			FinalizePartials(subDir)
		case DriveKindFile:
			if _, err := w.File(ctx, entry.ID, outputDir); err != nil {
				slog.Warn("skipping drive file", "id", entry.ID, "title", entry.Title, "error", err)
				w.ui.Failure("Failed to download %s: %v", entry.Title, err)
				failed++
			}
		}
	}
	return incompleteFolder(failed, len(entries))
}

// incompleteFolder reports skipped folder entries, or nil when none failed
func incompleteFolder(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d entries failed", ErrIncompleteFolder, failed, total)
}

// folderEntry is one item listed on a folder page
type folderEntry struct {
	ID    string
	Title string
	Kind  DriveKind
}

func (w *WebFetcher) listFolder(ctx context.Context, id string) ([]folderEntry, error) {
	target := w.folderURL + "?" + url.Values{"id": {id}}.Encode()
	resp, err := w.get(ctx, target, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing folder %s: unexpected status %s", id, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing folder page: %w", err)
	}
	return parseFolderEntries(doc), nil
}

// parseFolderEntries reads the .flip-entry items of an embedded folder view
func parseFolderEntries(doc *goquery.Document) []folderEntry {
	var entries []folderEntry
	doc.Find(".flip-entry").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Find("a").Attr("href")
		if !ok {
			return
		}
		link := Classify(href)
		if link.Kind == DriveKindUnknown {
			return
		}
		entries = append(entries, folderEntry{
			ID:    link.ID,
			Title: strings.TrimSpace(s.Find(".flip-entry-title").Text()),
			Kind:  link.Kind,
		})
	})
	return entries
}

func (w *WebFetcher) get(ctx context.Context, target string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", driveUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", target, err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("requesting %s: unexpected status %s", target, resp.Status)
	}
	return resp, nil
}

func isHTML(resp *http.Response) bool {
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html")
}

// confirmURL extracts the follow-up download URL from a confirmation page
func confirmURL(resp *http.Response) (string, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing confirmation page: %w", err)
	}

	if form := doc.Find("form#download-form"); form.Length() > 0 {
		action, _ := form.Attr("action")
		actionURL, err := resp.Request.URL.Parse(action)
		if err != nil {
			return "", fmt.Errorf("parsing form action %q: %w", action, err)
		}
		query := actionURL.Query()
		form.Find("input[name]").Each(func(_ int, s *goquery.Selection) {
			name, _ := s.Attr("name")
			value, _ := s.Attr("value")
			query.Set(name, value)
		})
		actionURL.RawQuery = query.Encode()
		return actionURL.String(), nil
	}

	if href, ok := doc.Find("a#uc-download-link").Attr("href"); ok {
		linkURL, err := resp.Request.URL.Parse(href)
		if err != nil {
			return "", fmt.Errorf("parsing download link %q: %w", href, err)
		}
		return linkURL.String(), nil
	}

	return "", errNotDownloadable
}

// filenameFromResponse prefers Content-Disposition and falls back to the ID
func filenameFromResponse(resp *http.Response, id string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			return sanitizeFilename(params["filename"], id)
		}
	}
	return id
}

// sanitizeFilename keeps only the base name so remote names cannot escape outputDir
func sanitizeFilename(name, fallback string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
