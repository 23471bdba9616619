package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	images "folklore-pipeline/02_images"
	"folklore-pipeline/logger"
	"folklore-pipeline/types"
)

var (
	fetchTags     []string
	fetchCategory string
	fetchTheme    string
	fetchCount    int
	fetchOut      string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch portrait stock images for the given visual tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(); err != nil {
			return err
		}
		if len(fetchTags) == 0 {
			return fmt.Errorf("at least one --tag is required")
		}

		if fetchCount > 0 {
			cfg.Images.Count = fetchCount
			if cfg.Images.MinCount > fetchCount {
				cfg.Images.MinCount = fetchCount
			}
		}
		out := fetchOut
		if out == "" {
			out = filepath.Join(cfg.Paths.Output, "images")
		}

		stub := &types.Story{
			ID:         "manual",
			Category:   fetchCategory,
			Theme:      fetchTheme,
			VisualTags: fetchTags,
		}

		assets, err := images.New(cfg).Run(cmd.Context(), stub, out)
		if err != nil {
			return err
		}

		log := logger.Stage("fetch")
		for _, a := range assets {
			log.Info().Str("provider", a.Provider).Int("width", a.Width).Int("height", a.Height).Msg(a.Path)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchTags, "tag", nil, "visual tag, repeatable")
	fetchCmd.Flags().StringVar(&fetchCategory, "category", "", "story category for fallback keywords")
	fetchCmd.Flags().StringVar(&fetchTheme, "theme", "", "visual theme (dark, warm, winter)")
	fetchCmd.Flags().IntVar(&fetchCount, "count", 0, "number of images to fetch (default from config)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "download directory")
	rootCmd.AddCommand(fetchCmd)
}
