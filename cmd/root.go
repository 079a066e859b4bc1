package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytgrab/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytgrab",
	Short: "Download YouTube media and the Google Drive files linked from it",
	Long: `ytgrab downloads a YouTube video, playlist or search result as video or audio
using yt-dlp, optionally changing quality and playback speed.

With --drive it also scans the video's description and top comments for
Google Drive links and downloads every linked file and folder.

The last URL passed with --link is remembered in the env file (YOUTUBE_URL)
and used when neither --link nor --search is given.`,
	Example: `  # Download a video as mp4 and remember the URL
  ytgrab -l "https://www.youtube.com/watch?v=tAP1eZYEuKA"

  # Download the first search result as mp3 at 1.5x speed
  ytgrab -s "lofi hip hop" -f mp3 -u 1.5x

  # Download the first playlist matching a query in 720p
  ytgrab -s "go tutorial playlist" -q 720

  # Download a video and everything it links to on Google Drive
  ytgrab -l "https://www.youtube.com/watch?v=tAP1eZYEuKA" --drive

  # Re-encode every mp4 in the output directory
  ytgrab -f fix`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			return fmt.Errorf("failed to get env-file flag: %w", err)
		}

		config, err = internal.InitConfig(envFile, cmd.Flags())
		if err != nil {
			return err
		}

		internal.InitLogging(config)
		return nil
	},
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := internal.RunOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		app := internal.NewApp(cmd.Context(), config)
		return app.Run(cmd.Context(), opts)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Create a cancellable context for the entire application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer internal.CloseLogging()

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	executeDone := make(chan struct{})
	defer close(executeDone)

	// Handle shutdown signal in a separate goroutine. Partial downloads are
	// left as .part files so the next run resumes them.
	go func() {
		select {
		case <-sigCh:
		case <-executeDone:
			return
		}
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Shutting down, partial downloads will resume next run...")

		// Cancel the main context to signal all operations to stop
		cancel()

		// Give running transfers a moment to close their files
		select {
		case <-executeDone:
		case <-time.After(3 * time.Second):
			fmt.Fprintln(os.Stderr, "Warning: Shutdown timed out, forcing exit")
			internal.CloseLogging()
			os.Exit(130)
		}
	}()

	// Set context on root command
	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	internal.AddDownloadFlags(rootCmd)
	internal.AddOutputFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Only print errors")
	rootCmd.PersistentFlags().String("env-file", internal.DefaultEnvFile, "Env file holding YOUTUBE_URL and defaults")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}
