package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	story "folklore-pipeline/01_story"
	"folklore-pipeline/logger"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Scout folklore subreddits for new story leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(); err != nil {
			return err
		}

		scout, err := story.NewScout(cfg)
		if err != nil {
			return err
		}
		leads, err := scout.Run(cmd.Context())
		if err != nil {
			return err
		}
		if err := story.SaveLeads(cfg.Paths.Suggestions, leads); err != nil {
			return fmt.Errorf("save leads: %w", err)
		}

		log := logger.Stage("suggest")
		for _, lead := range leads {
			log.Info().
				Int("score", lead.Score).
				Str("subreddit", lead.Subreddit).
				Str("url", lead.URL).
				Msg(lead.Title)
		}
		log.Info().Int("count", len(leads)).Str("file", cfg.Paths.Suggestions).Msg("✅ leads saved")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
