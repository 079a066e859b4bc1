package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytgrab/internal"
)

// fixCmd is the subcommand form of --format fix
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Re-encode every mp4 in the output directory with FFmpeg",
	Long: `Re-encode every .mp4 in the output directory to H.264 video and AAC audio.

Each file is rewritten in place; files FFmpeg cannot process are left untouched.
Set FFMPEG_PATH to use an FFmpeg binary that is not on PATH.`,
	Example: `  # Fix the default output directory
  ytgrab fix

  # Fix another directory
  ytgrab fix --output ~/Videos`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(cmd.Context(), config)
		return app.Fix(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)
}
