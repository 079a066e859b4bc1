package internal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvFile     = ".env"
	DefaultOutputDir   = "downloads"
	DefaultMaxComments = 200
	DefaultTimeout     = 20
	DefaultFFmpegPath  = "ffmpeg"
)

// Environment store keys
const (
	EnvYouTubeURL    = "YOUTUBE_URL"
	EnvOutputDir     = "OUTPUT_DIR"
	EnvMaxComments   = "MAX_COMMENTS"
	EnvTimeout       = "TIMEOUT"
	EnvYouTubeAPIKey = "YOUTUBE_API_KEY"
	EnvDriveAPIKey   = "DRIVE_API_KEY"
	EnvFFmpegPath    = "FFMPEG_PATH"
)

// configKeys maps viper keys to their environment store names
var configKeys = map[string]string{
	"youtube_url":     EnvYouTubeURL,
	"output_dir":      EnvOutputDir,
	"max_comments":    EnvMaxComments,
	"timeout":         EnvTimeout,
	"youtube_api_key": EnvYouTubeAPIKey,
	"drive_api_key":   EnvDriveAPIKey,
	"ffmpeg_path":     EnvFFmpegPath,
}

// flagKeys maps viper keys to the CLI flags that override them
var flagKeys = map[string]string{
	"output_dir":   "output",
	"max_comments": "max-comments",
	"timeout":      "timeout",
	"verbose":      "verbose",
	"quiet":        "quiet",
}

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Config holds the resolved application settings
type Config struct {
	OutputDir      string
	MaxComments    int
	TimeoutSeconds int
	StoredURL      string
	YouTubeAPIKey  string
	DriveAPIKey    string
	FFmpegPath     string
	Verbose        bool
	Quiet          bool

	EnvFile string

	// Fixed XDG paths (not configurable)
	StateDir string
	LogFile  string
}

// Timeout returns the network timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Resolver layers built-in defaults, the environment store, the process
// environment and CLI flags, in increasing order of precedence
type Resolver struct {
	v       *viper.Viper
	envFile string
}

// NewResolver creates a resolver backed by the given environment store file
func NewResolver(envFile string) *Resolver {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	v := viper.New()
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("max_comments", DefaultMaxComments)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("ffmpeg_path", DefaultFFmpegPath)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)

	for key, env := range configKeys {
		_ = v.BindEnv(key, env)
	}

	return &Resolver{v: v, envFile: envFile}
}

// LoadEnvFile merges the environment store into the file layer.
// A missing file is not an error.
func (r *Resolver) LoadEnvFile() error {
	values, err := NewEnvStore(r.envFile).Read()
	if err != nil {
		return err
	}

	layer := make(map[string]any, len(values))
	for key, env := range configKeys {
		if value, ok := values[env]; ok {
			layer[key] = value
		}
	}
	return r.v.MergeConfigMap(layer)
}

// BindFlags makes explicitly set CLI flags override every other layer
func (r *Resolver) BindFlags(flags *pflag.FlagSet) error {
	for key, name := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := r.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// Resolve computes the effective configuration
func (r *Resolver) Resolve() (*Config, error) {
	outputDir := strings.TrimSpace(r.v.GetString("output_dir"))
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	maxComments, err := r.intSetting("max_comments")
	if err != nil {
		return nil, err
	}
	if maxComments < 0 {
		return nil, fmt.Errorf("max comments must not be negative, got %d", maxComments)
	}

	timeout, err := r.intSetting("timeout")
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be a positive number of seconds, got %d", timeout)
	}

	stateDir := filepath.Join(xdg.StateHome, "ytgrab")

	return &Config{
		OutputDir:      outputDir,
		MaxComments:    maxComments,
		TimeoutSeconds: timeout,
		StoredURL:      strings.TrimSpace(r.v.GetString("youtube_url")),
		YouTubeAPIKey:  r.v.GetString("youtube_api_key"),
		DriveAPIKey:    r.v.GetString("drive_api_key"),
		FFmpegPath:     r.v.GetString("ffmpeg_path"),
		Verbose:        r.v.GetBool("verbose"),
		Quiet:          r.v.GetBool("quiet"),
		EnvFile:        r.envFile,
		StateDir:       stateDir,
		LogFile:        filepath.Join(stateDir, "ytgrab.log"),
	}, nil
}

// intSetting reads an integer key, rejecting values that are not numbers
func (r *Resolver) intSetting(key string) (int, error) {
	raw := r.v.Get(key)
	if str, ok := raw.(string); ok {
		raw = strings.TrimSpace(str)
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", configKeys[key], fmt.Sprint(r.v.Get(key)), err)
	}
	return n, nil
}

// InitConfig resolves configuration for a command invocation
func InitConfig(envFile string, flags *pflag.FlagSet) (*Config, error) {
	r := NewResolver(envFile)
	if err := r.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error reading env file: %v\n", err)
	}
	if flags != nil {
		if err := r.BindFlags(flags); err != nil {
			return nil, err
		}
	}
	return r.Resolve()
}
