package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytgrab/internal"
)

// linksCmd lists the Drive links of a video without downloading anything
var linksCmd = &cobra.Command{
	Use:   "links [YouTube video URL]",
	Short: "List Google Drive links found in a video's description and comments",
	Example: `  # List Drive links of a video
  ytgrab links "https://www.youtube.com/watch?v=tAP1eZYEuKA"

  # Use the URL remembered in the env file
  ytgrab links

  # Plain URL list for scripting
  ytgrab links "https://www.youtube.com/watch?v=tAP1eZYEuKA" --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoURL, err := videoArg(args)
		if err != nil {
			return err
		}

		app := internal.NewApp(cmd.Context(), config, internal.WithUI(statusUI()))
		links := app.ScanDriveLinks(cmd.Context(), videoURL)

		plain, _ := cmd.Flags().GetBool("plain")
		if plain || !isatty.IsTerminal(os.Stdout.Fd()) {
			if len(links) > 0 {
				fmt.Println(internal.LinkURLs(links))
			}
			return nil
		}

		rendered, err := internal.RenderMarkdown(internal.LinksMarkdown(videoURL, links))
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	},
}

// videoArg picks the explicit argument or the remembered URL and requires a single video
func videoArg(args []string) (string, error) {
	videoURL := config.StoredURL
	if len(args) > 0 {
		videoURL = args[0]
	}
	if videoURL == "" {
		return "", internal.ErrNoURLSource
	}
	if !internal.IsDirectVideoURL(videoURL) {
		return "", internal.ErrDriveNeedsVideoURL
	}
	return videoURL, nil
}

// statusUI keeps stdout free for command output
func statusUI() internal.UIManager {
	if config.Quiet {
		return internal.NewSilentUI(io.Discard)
	}
	return internal.NewSilentUI(os.Stderr)
}

func init() {
	linksCmd.Flags().Bool("plain", false, "Print one URL per line instead of rendered markdown")
	rootCmd.AddCommand(linksCmd)
}
