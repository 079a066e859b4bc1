package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddDownloadFlags adds the flags that select and shape the media download
func AddDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("search", "s", "", "Search query for video or playlist")
	cmd.Flags().StringP("link", "l", "", "Direct YouTube URL (remembered in the env file)")
	cmd.Flags().StringP("format", "f", string(FormatMP4), "Format: mp3, mp4, wav, etc., or fix")
	cmd.Flags().StringP("quality", "q", "", "Quality: 240, 720, 1080, 4k, etc.")
	cmd.Flags().StringP("speed", "u", "1.0", "Playback speed: 0.5, 1.0, 1.5x, 2.0, etc.")
	cmd.Flags().Bool("drive", false, "Also scrape and download Google Drive links from the YouTube video")
}

// AddOutputFlags adds flags that override the environment file defaults
func AddOutputFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("output", "", "Output directory (default: OUTPUT_DIR or downloads)")
	cmd.PersistentFlags().Int("max-comments", 0, "Max comments to scan for Drive links (default: MAX_COMMENTS or 200)")
	cmd.PersistentFlags().Int("timeout", 0, "Timeout in seconds for network requests (default: TIMEOUT or 20)")
}

// RunOptionsFromFlags reads the download flags of cmd
func RunOptionsFromFlags(cmd *cobra.Command) (RunOptions, error) {
	var opts RunOptions
	var err error

	flags := cmd.Flags()
	if opts.Search, err = flags.GetString("search"); err != nil {
		return opts, fmt.Errorf("failed to get search flag: %w", err)
	}
	if opts.Link, err = flags.GetString("link"); err != nil {
		return opts, fmt.Errorf("failed to get link flag: %w", err)
	}
	if opts.Format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.Quality, err = flags.GetString("quality"); err != nil {
		return opts, fmt.Errorf("failed to get quality flag: %w", err)
	}
	if opts.Speed, err = flags.GetString("speed"); err != nil {
		return opts, fmt.Errorf("failed to get speed flag: %w", err)
	}
	if opts.Drive, err = flags.GetBool("drive"); err != nil {
		return opts, fmt.Errorf("failed to get drive flag: %w", err)
	}

	return opts, nil
}
