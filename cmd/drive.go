package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytgrab/internal"
)

// driveCmd downloads Google Drive links given on the command line
var driveCmd = &cobra.Command{
	Use:   "drive [Drive URL]...",
	Short: "Download Google Drive files and folders",
	Long: `Download one or more Google Drive file or folder links into the output directory.

Links are processed in order; a failing link does not stop the others.
Interrupted downloads are resumed from their .part file on the next run.
When DRIVE_API_KEY is set the Drive API is used instead of the public web endpoints.`,
	Example: `  # Download a shared file
  ytgrab drive "https://drive.google.com/file/d/1AbCdEfGhIjKlMnOp/view"

  # Download a folder into a custom directory
  ytgrab drive "https://drive.google.com/drive/folders/1AbCdEfGhIjKlMnOp" --output assets`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(cmd.Context(), config)
		return app.DownloadDrive(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(driveCmd)
}
