package internal

import (
	"context"
	"fmt"
	"log/slog"
)

// MediaDownloader downloads the primary video or audio
type MediaDownloader interface {
	Download(ctx context.Context, req DownloadRequest) error
}

// App holds the application state and dependencies
type App struct {
	config       *Config
	media        MediaDownloader
	descriptions *DescriptionChain
	comments     CommentSource
	drive        *DriveDownloader
	fixer        *Fixer
	searcher     *Searcher
	envStore     *EnvStore
	ui           UIManager

	// set by options, consumed once all options are applied
	fetcher   Fetcher
	cmdRunner CommandRunner
}

// RunOptions carries the per-invocation CLI choices
type RunOptions struct {
	Search  string
	Link    string
	Format  string
	Quality string
	Speed   string
	Drive   bool
}

// NewApp initializes the application
func NewApp(ctx context.Context, config *Config, options ...AppOption) *App {
	yt := NewYouTube(config.Timeout())

	app := &App{
		config: config,
		media:  yt,
		descriptions: NewDescriptionChain(
			NewNativeDescription(config.Timeout()),
			NewYtdlpDescription(yt),
		),
		comments: NewCommentSource(ctx, config, yt),
		searcher: NewSearcher(config.Timeout()),
		envStore: NewEnvStore(config.EnvFile),
		ui:       NewUIManager(config.Quiet),
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	// Components that print status are built last so they share the final UI
	if app.fetcher == nil {
		app.fetcher = NewFetcher(ctx, config, app.ui)
	}
	if app.cmdRunner == nil {
		app.cmdRunner = &DefaultCommandRunner{}
	}
	app.drive = NewDriveDownloader(app.fetcher, app.ui)
	app.fixer = NewFixer(app.cmdRunner, config.FFmpegPath, app.ui)

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithMediaDownloader sets a custom media downloader
func WithMediaDownloader(media MediaDownloader) AppOption {
	return func(a *App) {
		a.media = media
	}
}

// WithDescriptionSources replaces the description provider chain
func WithDescriptionSources(sources ...TextSource) AppOption {
	return func(a *App) {
		a.descriptions = NewDescriptionChain(sources...)
	}
}

// WithCommentSource sets a custom comment source
func WithCommentSource(src CommentSource) AppOption {
	return func(a *App) {
		a.comments = src
	}
}

// WithFetcher sets a custom Drive fetcher
func WithFetcher(fetcher Fetcher) AppOption {
	return func(a *App) {
		a.fetcher = fetcher
	}
}

// WithCommandRunner sets the runner used for FFmpeg
func WithCommandRunner(runner CommandRunner) AppOption {
	return func(a *App) {
		a.cmdRunner = runner
	}
}

// WithSearcher sets a custom searcher
func WithSearcher(searcher *Searcher) AppOption {
	return func(a *App) {
		a.searcher = searcher
	}
}

// WithUI sets the UI used for status output
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// Run performs the complete workflow: resolve target -> download -> Drive links
func (app *App) Run(ctx context.Context, opts RunOptions) error {
	format := ParseFormat(opts.Format)
	if format == FormatFix {
		return app.Fix(ctx)
	}

	speed, err := ParseSpeed(opts.Speed)
	if err != nil {
		return err
	}

	target, err := app.ResolveTarget(ctx, opts)
	if err != nil {
		return err
	}

	req := DownloadRequest{
		TargetURL: target,
		Format:    format,
		Quality:   NormalizeQuality(opts.Quality),
		Speed:     speed,
		OutputDir: app.config.OutputDir,
	}
	slog.Info("downloading media", "target", target, "format", format, "quality", req.Quality, "speed", speed)
	if err := app.media.Download(ctx, req); err != nil {
		return fmt.Errorf("downloading media: %w", err)
	}

	if !opts.Drive {
		return nil
	}

	// Drive scraping only works on a single video
	if opts.Link == "" && !IsDirectVideoURL(target) {
		return ErrDriveNeedsVideoURL
	}
	videoURL := opts.Link
	if videoURL == "" {
		videoURL = target
	}

	return app.DriveFromVideo(ctx, videoURL)
}

// ResolveTarget picks the URL source: explicit link, then search, then the
// URL stored in the environment file. An explicit link is persisted.
func (app *App) ResolveTarget(ctx context.Context, opts RunOptions) (string, error) {
	switch {
	case opts.Link != "":
		if err := app.envStore.Set(EnvYouTubeURL, opts.Link); err != nil {
			slog.Warn("could not remember link", "env_file", app.envStore.Path(), "error", err)
		}
		return opts.Link, nil
	case opts.Search != "":
		target, err := app.searcher.Resolve(ctx, opts.Search)
		if err != nil {
			return "", fmt.Errorf("resolving search %q: %w", opts.Search, err)
		}
		return target, nil
	case app.config.StoredURL != "":
		return app.config.StoredURL, nil
	default:
		return "", ErrNoURLSource
	}
}

// ScanDriveLinks collects Drive links from a video's description and top comments
func (app *App) ScanDriveLinks(ctx context.Context, videoURL string) []DriveLink {
	app.ui.Success("Fetching description for Drive links: %s", videoURL)
	description := app.descriptions.Fetch(ctx, videoURL)

	app.ui.Success("Fetching up to %d comments", app.config.MaxComments)
	comments := FetchComments(ctx, app.comments, videoURL, app.config.MaxComments)
	slog.Debug("scanned video texts", "description_length", len(description), "comments", len(comments))

	texts := append([]string{description}, comments...)
	return ClassifyAll(ExtractAllLinks(texts))
}

// DriveFromVideo scans a video for Drive links and downloads each of them.
// Individual link failures are reported but do not fail the run.
func (app *App) DriveFromVideo(ctx context.Context, videoURL string) error {
	links := app.ScanDriveLinks(ctx, videoURL)
	if len(links) == 0 {
		app.ui.Failure("No Google Drive links found.")
		return nil
	}

	app.ui.Success("Found %d Google Drive link(s)", len(links))
	urls := make([]string, 0, len(links))
	for _, link := range links {
		app.ui.Printf("    - %s\n", link.URL)
		urls = append(urls, link.URL)
	}

	results := app.drive.DownloadAll(ctx, urls, app.config.OutputDir)
	if failed := failedCount(results); failed > 0 {
		slog.Warn("some drive downloads failed", "failed", failed, "total", len(results))
	}
	return nil
}

// DownloadDrive downloads Drive URLs directly and fails if any link failed
func (app *App) DownloadDrive(ctx context.Context, urls []string) error {
	results := app.drive.DownloadAll(ctx, urls, app.config.OutputDir)
	if failed := failedCount(results); failed > 0 {
		return fmt.Errorf("%d of %d Drive downloads failed", failed, len(results))
	}
	return nil
}

// Fix re-encodes every .mp4 in the output directory
func (app *App) Fix(ctx context.Context) error {
	fixed, failed, err := app.fixer.FixDir(ctx, app.config.OutputDir)
	if err != nil {
		return err
	}
	slog.Info("fix finished", "dir", app.config.OutputDir, "fixed", fixed, "failed", failed)
	return nil
}
