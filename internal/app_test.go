package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMedia struct {
	requests []DownloadRequest
	err      error
}

func (f *fakeMedia) Download(ctx context.Context, req DownloadRequest) error {
	f.requests = append(f.requests, req)
	return f.err
}

type appFixture struct {
	app     *App
	config  *Config
	media   *fakeMedia
	fetcher *fakeFetcher
	out     *bytes.Buffer
}

func newAppFixture(t *testing.T, description string, commentTexts ...string) *appFixture {
	t.Helper()
	dir := t.TempDir()
	config := &Config{
		OutputDir:      filepath.Join(dir, "downloads"),
		MaxComments:    10,
		TimeoutSeconds: 5,
		FFmpegPath:     DefaultFFmpegPath,
		EnvFile:        filepath.Join(dir, ".env"),
	}

	f := &appFixture{
		config:  config,
		media:   &fakeMedia{},
		fetcher: &fakeFetcher{},
		out:     &bytes.Buffer{},
	}
	f.app = NewApp(context.Background(), config,
		WithUI(NewSilentUI(f.out)),
		WithMediaDownloader(f.media),
		WithDescriptionSources(&fakeTextSource{name: "fake", text: description}),
		WithCommentSource(&fakeCommentSource{stream: &sliceStream{comments: testComments(commentTexts...)}}),
		WithFetcher(f.fetcher),
	)
	return f
}

func TestResolveTargetPriority(t *testing.T) {
	f := newAppFixture(t, "")
	f.config.StoredURL = "https://www.youtube.com/watch?v=stored"

	target, err := f.app.ResolveTarget(context.Background(), RunOptions{
		Link:   "https://www.youtube.com/watch?v=link",
		Search: "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=link", target)

	target, err = f.app.ResolveTarget(context.Background(), RunOptions{Search: "lofi"})
	require.NoError(t, err)
	assert.Equal(t, "ytsearch:lofi", target)

	target, err = f.app.ResolveTarget(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=stored", target)
}

func TestResolveTargetPersistsLink(t *testing.T) {
	f := newAppFixture(t, "")
	writeFile(t, f.config.EnvFile, "OUTPUT_DIR=media\n")

	_, err := f.app.ResolveTarget(context.Background(), RunOptions{Link: "https://www.youtube.com/watch?v=abc"})
	require.NoError(t, err)

	values, err := NewEnvStore(f.config.EnvFile).Read()
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", values[EnvYouTubeURL])
	assert.Equal(t, "media", values[EnvOutputDir])
}

func TestResolveTargetNoSource(t *testing.T) {
	f := newAppFixture(t, "")

	_, err := f.app.ResolveTarget(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, ErrNoURLSource)
}

func TestRunDownloadsMedia(t *testing.T) {
	f := newAppFixture(t, "")

	err := f.app.Run(context.Background(), RunOptions{
		Link:    "https://www.youtube.com/watch?v=abc",
		Format:  "MP3",
		Quality: "4k",
		Speed:   "1.5x",
	})
	require.NoError(t, err)

	require.Len(t, f.media.requests, 1)
	assert.Equal(t, DownloadRequest{
		TargetURL: "https://www.youtube.com/watch?v=abc",
		Format:    FormatMP3,
		Quality:   "2160",
		Speed:     1.5,
		OutputDir: f.config.OutputDir,
	}, f.media.requests[0])
	assert.Empty(t, f.fetcher.files)
}

func TestRunRejectsBadSpeed(t *testing.T) {
	f := newAppFixture(t, "")

	err := f.app.Run(context.Background(), RunOptions{Link: "https://www.youtube.com/watch?v=abc", Format: "mp4", Speed: "fast"})
	assert.Error(t, err)
	assert.Empty(t, f.media.requests)
}

func TestRunWrapsDownloadError(t *testing.T) {
	f := newAppFixture(t, "")
	f.media.err = errors.New("yt-dlp failed")

	err := f.app.Run(context.Background(), RunOptions{Link: "https://www.youtube.com/watch?v=abc", Format: "mp4", Speed: "1"})
	assert.ErrorIs(t, err, f.media.err)
}

func TestRunDriveFromVideo(t *testing.T) {
	f := newAppFixture(t,
		"Samples: https://drive.google.com/drive/folders/folderid123 and https://drive.google.com/file/d/fileid12345/view",
		"mirror https://drive.google.com/file/d/fileid12345/view",
		"",
		"another https://drive.google.com/open?id=openid12345",
	)
	f.fetcher.failIDs = map[string]bool{"fileid12345": true}

	err := f.app.Run(context.Background(), RunOptions{
		Link:   "https://www.youtube.com/watch?v=abc",
		Format: "mp4",
		Speed:  "1.0",
		Drive:  true,
	})
	require.NoError(t, err)

	require.Len(t, f.media.requests, 1)
	assert.Equal(t, []string{"folderid123"}, f.fetcher.folders)
	assert.Equal(t, []string{"fileid12345", "openid12345"}, f.fetcher.files)
	assert.Contains(t, f.out.String(), "Found 3 Google Drive link(s)")
}

func TestRunDriveNeedsVideoURL(t *testing.T) {
	f := newAppFixture(t, "https://drive.google.com/file/d/fileid12345")

	err := f.app.Run(context.Background(), RunOptions{Search: "lofi", Format: "mp4", Speed: "1", Drive: true})

	assert.ErrorIs(t, err, ErrDriveNeedsVideoURL)
	assert.Len(t, f.media.requests, 1, "media is downloaded before the Drive check")
	assert.Empty(t, f.fetcher.files)
}

func TestRunDriveWithStoredVideoURL(t *testing.T) {
	f := newAppFixture(t, "https://drive.google.com/file/d/fileid12345")
	f.config.StoredURL = "https://www.youtube.com/watch?v=stored"

	err := f.app.Run(context.Background(), RunOptions{Format: "mp4", Speed: "1", Drive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"fileid12345"}, f.fetcher.files)
}

func TestDriveFromVideoNoLinks(t *testing.T) {
	f := newAppFixture(t, "nothing to see", "great video")

	require.NoError(t, f.app.DriveFromVideo(context.Background(), "https://www.youtube.com/watch?v=abc"))
	assert.Contains(t, f.out.String(), "No Google Drive links found.")
	assert.Empty(t, f.fetcher.files)
	assert.Empty(t, f.fetcher.folders)
}

func TestScanDriveLinksRespectsMaxComments(t *testing.T) {
	f := newAppFixture(t, "",
		"https://drive.google.com/file/d/first123456",
		"https://drive.google.com/file/d/second12345",
	)
	f.config.MaxComments = 1

	links := f.app.ScanDriveLinks(context.Background(), "https://www.youtube.com/watch?v=abc")

	require.Len(t, links, 1)
	assert.Equal(t, "first123456", links[0].ID)
}

func TestDownloadDriveReportsFailures(t *testing.T) {
	f := newAppFixture(t, "")
	f.fetcher.failIDs = map[string]bool{"badfile1234": true}

	err := f.app.DownloadDrive(context.Background(), []string{
		"https://drive.google.com/file/d/goodfile123",
		"https://drive.google.com/file/d/badfile1234",
	})
	assert.ErrorContains(t, err, "1 of 2 Drive downloads failed")

	require.NoError(t, f.app.DownloadDrive(context.Background(), []string{"https://drive.google.com/file/d/goodfile123"}))
}

func TestRunFixFormat(t *testing.T) {
	f := newAppFixture(t, "")
	require.NoError(t, EnsureDirs(f.config.OutputDir))
	writeFile(t, filepath.Join(f.config.OutputDir, "clip.mp4"), "raw")

	runner := &fakeFFmpeg{}
	f.app = NewApp(context.Background(), f.config,
		WithUI(NewSilentUI(io.Discard)),
		WithMediaDownloader(f.media),
		WithCommandRunner(runner),
	)

	require.NoError(t, f.app.Run(context.Background(), RunOptions{Format: "fix", Speed: "not-checked"}))
	assert.Len(t, runner.calls, 1)
	assert.Empty(t, f.media.requests)
}

func TestWithUIReachesDefaultComponents(t *testing.T) {
	dir := t.TempDir()
	config := &Config{
		OutputDir:      filepath.Join(dir, "downloads"),
		TimeoutSeconds: 5,
		FFmpegPath:     DefaultFFmpegPath,
		EnvFile:        filepath.Join(dir, ".env"),
	}
	ui := NewSilentUI(io.Discard)
	runner := &fakeFFmpeg{}

	orders := map[string][]AppOption{
		"ui first": {WithUI(ui), WithCommandRunner(runner)},
		"ui last":  {WithCommandRunner(runner), WithUI(ui)},
	}
	for name, options := range orders {
		t.Run(name, func(t *testing.T) {
			app := NewApp(context.Background(), config, options...)

			web, ok := app.drive.fetcher.(*WebFetcher)
			require.True(t, ok, "no Drive API key selects the web fetcher")
			assert.Same(t, ui, web.ui)
			assert.Same(t, ui, app.drive.ui)
			assert.Same(t, ui, app.fixer.ui)
			assert.Same(t, runner, app.fixer.cmdRunner)
		})
	}
}
