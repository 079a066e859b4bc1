package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  ytgrab paths`,
	Run: func(cmd *cobra.Command, args []string) {
		envFile, err := filepath.Abs(config.EnvFile)
		if err != nil {
			envFile = config.EnvFile
		}
		outputDir, err := filepath.Abs(config.OutputDir)
		if err != nil {
			outputDir = config.OutputDir
		}

		fmt.Printf("Env file: %s\n", envFile)
		fmt.Printf("Output directory: %s\n", outputDir)
		fmt.Printf("State directory: %s\n", config.StateDir)
		fmt.Printf("Log file: %s\n", config.LogFile)
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
