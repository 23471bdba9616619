package cmd

import (
	"github.com/spf13/cobra"
)

var (
	runUpload   bool
	runSchedule bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate today's folklore short end to end",
	Long: `Selects the next story from the rotation, fetches portrait images,
synthesizes the narration, composes the slideshow timeline, renders the
video and records run statistics. Upload is off unless --upload is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(); err != nil {
			return err
		}
		return runPipeline(cmd.Context(), runUpload, runSchedule)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runUpload, "upload", false, "upload the rendered video to YouTube")
	runCmd.Flags().BoolVar(&runSchedule, "schedule", false, "schedule the upload for the next publish slot")
	rootCmd.AddCommand(runCmd)
}
