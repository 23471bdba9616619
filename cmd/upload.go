package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	story "folklore-pipeline/01_story"
	publish "folklore-pipeline/06_publish"
	"folklore-pipeline/logger"
)

var (
	uploadVideoFile string
	uploadStoryID   string
	uploadSchedule  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Publish an already rendered video to YouTube",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(); err != nil {
			return err
		}
		if uploadVideoFile == "" {
			return fmt.Errorf("--video is required")
		}
		if uploadStoryID == "" {
			return fmt.Errorf("--story is required for listing metadata")
		}

		db, err := story.LoadDatabase(cfg.Paths.Database)
		if err != nil {
			return err
		}
		entry, ok := db.Get(uploadStoryID)
		if !ok {
			return fmt.Errorf("story %q not in the content database", uploadStoryID)
		}

		md, err := publish.BuildMetadata(cfg, entry, uploadSchedule, time.Now())
		if err != nil {
			return err
		}

		up := publish.New(cfg)
		videoID, videoURL, err := up.Run(cmd.Context(), uploadVideoFile, md)
		if err != nil {
			return err
		}
		if err := up.LogUpload(videoID, videoURL, uploadVideoFile, md); err != nil {
			logger.Stage("publish").Warn().Err(err).Msg("could not write upload log")
		}
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadVideoFile, "video", "", "rendered video file")
	uploadCmd.Flags().StringVar(&uploadStoryID, "story", "", "story id the video was generated from")
	uploadCmd.Flags().BoolVar(&uploadSchedule, "schedule", false, "schedule for the next publish slot instead of immediate visibility")
	rootCmd.AddCommand(uploadCmd)
}
