package internal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

var (
	logFile     *os.File
	logInitOnce sync.Once
)

// InitLogging installs the process-wide logger: human-readable records on
// stderr and JSON records appended to the log file under the XDG state dir.
func InitLogging(config *Config) {
	logInitOnce.Do(func() {
		slog.SetDefault(newLogger(config, os.Stderr))
	})
}

// CloseLogging flushes and closes the log file
func CloseLogging() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func newLogger(config *Config, stderr io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if config.Verbose {
		level = slog.LevelDebug
	}
	if config.Quiet {
		level = slog.LevelError
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}

	if fileHandler := openFileHandler(config.LogFile); fileHandler != nil {
		handlers = append(handlers, fileHandler)
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

// openFileHandler returns nil when the log file cannot be opened,
// in which case only stderr logging is used
func openFileHandler(path string) slog.Handler {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	logFile = f

	return slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
}
