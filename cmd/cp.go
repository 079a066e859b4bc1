package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytgrab/internal"
)

// cpCmd copies the Drive links of a video to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [YouTube video URL]",
	Short: "Copy Google Drive links of a video to the clipboard",
	Example: `  # Copy Drive links found under a video
  ytgrab cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoURL, err := videoArg(args)
		if err != nil {
			return err
		}

		app := internal.NewApp(cmd.Context(), config, internal.WithUI(statusUI()))
		links := app.ScanDriveLinks(cmd.Context(), videoURL)
		if len(links) == 0 {
			return fmt.Errorf("no Google Drive links found for %s", videoURL)
		}

		if err := clipboard.WriteAll(internal.LinkURLs(links)); err != nil {
			return fmt.Errorf("copying links to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Printf("Copied %d Google Drive link(s) to clipboard\n", len(links))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cpCmd)
}
