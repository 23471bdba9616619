package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	story "folklore-pipeline/01_story"
	voice "folklore-pipeline/03_voice"
	"folklore-pipeline/logger"
	"folklore-pipeline/types"
)

var (
	voiceStoryID string
	voiceText    string
	voiceTone    string
	voiceTarget  int
	voiceOut     string
	voiceList    bool
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Synthesize narration for a story id or raw text",
	RunE: func(cmd *cobra.Command, args []string) error {
		if voiceList {
			for _, p := range voice.Profiles() {
				fmt.Printf("%-18s %-22s rate %-5s pitch %-6s %s\n",
					p.Name, p.Voice, p.Rate, p.Pitch, p.Description)
			}
			return nil
		}

		if err := requireConfig(); err != nil {
			return err
		}

		var entry *types.Story
		switch {
		case voiceStoryID != "":
			db, err := story.LoadDatabase(cfg.Paths.Database)
			if err != nil {
				return err
			}
			found, ok := db.Get(voiceStoryID)
			if !ok {
				return fmt.Errorf("story %q not in the content database", voiceStoryID)
			}
			entry = found
		case voiceText != "":
			tone := voiceTone
			if tone == "" {
				tone = cfg.Voice.DefaultProfile
			}
			entry = &types.Story{
				ID:             "manual",
				StoryFull:      voiceText,
				VoiceTone:      tone,
				DurationTarget: voiceTarget,
			}
		default:
			return fmt.Errorf("either --story or --text is required")
		}

		out := voiceOut
		if out == "" {
			out = filepath.Join(cfg.Paths.Output, "audio")
		}

		narration, err := voice.New(cfg).Run(cmd.Context(), entry, out)
		if err != nil {
			return err
		}
		logger.Stage("voice").Info().
			Str("file", narration.AudioFile).
			Float64("duration_sec", narration.DurationSec).
			Str("profile", narration.Profile).
			Msg("narration written")
		return nil
	},
}

func init() {
	voiceCmd.Flags().StringVar(&voiceStoryID, "story", "", "story id from the content database")
	voiceCmd.Flags().StringVar(&voiceText, "text", "", "raw text to narrate instead of a story id")
	voiceCmd.Flags().StringVar(&voiceTone, "tone", "", "voice profile for --text")
	voiceCmd.Flags().IntVar(&voiceTarget, "target", 0, "target duration in seconds for --text")
	voiceCmd.Flags().StringVar(&voiceOut, "out", "", "output directory")
	voiceCmd.Flags().BoolVar(&voiceList, "list", false, "list the available voice profiles")
	rootCmd.AddCommand(voiceCmd)
}
