package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// ytdlpInstall resolves a usable yt-dlp binary once per process and
// remembers the outcome
type ytdlpInstall struct {
	once    sync.Once
	install func(ctx context.Context) error
	err     error
}

var defaultYtdlpInstall = &ytdlpInstall{
	install: func(ctx context.Context) error {
		_, err := ytdlp.Install(ctx, nil)
		return err
	},
}

// ensure makes sure a yt-dlp binary is available before the first run
func (i *ytdlpInstall) ensure(ctx context.Context) error {
	i.once.Do(func() {
		if err := i.install(ctx); err != nil {
			i.err = fmt.Errorf("yt-dlp unavailable: %w", err)
		}
	})
	return i.err
}

// VideoMetadata contains the parts of yt-dlp's info JSON this tool reads
type VideoMetadata struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Channel     string         `json:"channel"`
	Comments    []VideoComment `json:"comments"`
}

// VideoComment is a single comment as reported by yt-dlp
type VideoComment struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author"`
	Parent string `json:"parent"`
}

// mediaPlan is the yt-dlp option set derived from a DownloadRequest
type mediaPlan struct {
	Output            string
	Format            string
	ExtractAudio      bool
	AudioFormat       string
	RecodeVideo       string
	PostProcessorArgs string
}

// planMedia resolves format selection and post-processing for a request
func planMedia(req DownloadRequest) mediaPlan {
	plan := mediaPlan{
		Output: filepath.Join(req.OutputDir, "%(title)s.%(ext)s"),
	}
	speed := formatSpeed(req.Speed)
	changeSpeed := req.Speed != 0 && req.Speed != 1.0

	if req.Format.IsVideo() {
		plan.Format = "best"
		if req.Quality != "" {
			plan.Format = fmt.Sprintf("best[height<=%s]", req.Quality)
		}
		if changeSpeed {
			// "video" is not a container ffmpeg knows
			target := string(req.Format)
			if req.Format == FormatVideo {
				target = string(FormatMP4)
			}
			plan.RecodeVideo = target
			plan.PostProcessorArgs = fmt.Sprintf("VideoConvertor:-filter:v setpts=PTS/%s -filter:a atempo=%s", speed, speed)
		}
		return plan
	}

	plan.Format = "bestaudio/best"
	if req.Format == FormatMP3 || req.Format == FormatWAV {
		plan.ExtractAudio = true
		plan.AudioFormat = string(req.Format)
	}
	if changeSpeed {
		plan.ExtractAudio = true
		plan.AudioFormat = string(req.Format)
		plan.PostProcessorArgs = "ExtractAudio:-filter:a atempo=" + speed
	}
	return plan
}

// command builds the go-ytdlp invocation for the plan
func (p mediaPlan) command() *ytdlp.Command {
	dl := ytdlp.New().
		Format(p.Format).
		Output(p.Output)

	if p.ExtractAudio {
		dl = dl.ExtractAudio().AudioFormat(p.AudioFormat)
	}
	if p.RecodeVideo != "" {
		dl = dl.RecodeVideo(p.RecodeVideo)
	}
	if p.PostProcessorArgs != "" {
		dl = dl.PostProcessorArgs(p.PostProcessorArgs)
	}
	return dl
}

// YouTube drives yt-dlp for media downloads, metadata and comments
type YouTube struct {
	timeout time.Duration
	install *ytdlpInstall
}

// NewYouTube creates a new yt-dlp backed client
func NewYouTube(timeout time.Duration) *YouTube {
	return &YouTube{timeout: timeout, install: defaultYtdlpInstall}
}

// Download fetches the media described by req into req.OutputDir
func (yt *YouTube) Download(ctx context.Context, req DownloadRequest) error {
	if err := yt.install.ensure(ctx); err != nil {
		return err
	}

	if err := EnsureDirs(req.OutputDir); err != nil {
		return err
	}

	plan := planMedia(req)
	slog.Debug("starting media download",
		"target", req.TargetURL,
		"format", plan.Format,
		"extract_audio", plan.ExtractAudio,
		"recode", plan.RecodeVideo,
		"postprocessor_args", plan.PostProcessorArgs)

	result, err := plan.command().Run(ctx, req.TargetURL)
	if err != nil {
		if result != nil {
			slog.Debug("yt-dlp failed", "stderr", result.Stderr)
			return fmt.Errorf("yt-dlp failed: %w\nOutput: %s", err, result.Stderr)
		}
		return fmt.Errorf("yt-dlp failed: %w", err)
	}

	return nil
}

// Metadata fetches video details without downloading
func (yt *YouTube) Metadata(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	if err := yt.install.ensure(ctx); err != nil {
		return nil, err
	}

	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload().
		NoCheckCertificates().
		SocketTimeout(yt.timeout.Seconds())

	return yt.runMetadata(ctx, dl, videoURL)
}

// Comments fetches up to limit top comments in one yt-dlp run
func (yt *YouTube) Comments(ctx context.Context, videoURL string, limit int) ([]VideoComment, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := yt.install.ensure(ctx); err != nil {
		return nil, err
	}

	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload().
		WriteComments().
		ExtractorArgs(fmt.Sprintf("youtube:comment_sort=top;max_comments=%d", limit)).
		SocketTimeout(yt.timeout.Seconds())

	metadata, err := yt.runMetadata(ctx, dl, videoURL)
	if err != nil {
		return nil, err
	}
	return metadata.Comments, nil
}

func (yt *YouTube) runMetadata(ctx context.Context, dl *ytdlp.Command, videoURL string) (*VideoMetadata, error) {
	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		if result != nil {
			slog.Debug("yt-dlp metadata extraction failed", "url", videoURL, "stderr", result.Stderr)
		}
		return nil, fmt.Errorf("extracting video metadata: %w", err)
	}

	return parseMetadata([]byte(result.Stdout))
}

func parseMetadata(data []byte) (*VideoMetadata, error) {
	var metadata VideoMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}
	return &metadata, nil
}
