package cli

import (
	"storyreel/internal/logging"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "storyreel",
	Short: "Narrated-video generator for structured content descriptions",
	Long: `Storyreel turns a structured content description (text, image URLs,
optional background video) into a finished narrated video: speech is
synthesized per text segment, subtitles are timed to the audio, images
become a slideshow, and all item clips are concatenated into one file.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
