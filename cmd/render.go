package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	images "folklore-pipeline/02_images"
	timeline "folklore-pipeline/04_timeline"
	render "folklore-pipeline/05_render"
	"folklore-pipeline/logger"
)

var (
	renderImages []string
	renderAudio  string
	renderTitle  string
	renderOut    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Compose and render a slideshow from explicit images and audio",
	Long: `Bypasses the content pipeline: takes image files and a narration
audio file, composes the crossfade timeline against the measured audio
duration and renders the video.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(); err != nil {
			return err
		}
		if len(renderImages) == 0 {
			return fmt.Errorf("at least one --image is required")
		}
		if renderAudio == "" {
			return fmt.Errorf("--audio is required")
		}
		if renderTitle == "" {
			return fmt.Errorf("--title is required")
		}

		ctx := cmd.Context()
		log := logger.Stage("render")

		sources := make([]timeline.ImageSource, 0, len(renderImages))
		for _, path := range renderImages {
			w, h, err := images.ValidateFile(path, cfg.Images.MinFileBytes, cfg.Images.MinWidth, cfg.Images.MinHeight)
			if err != nil {
				return err
			}
			sources = append(sources, timeline.ImageSource{Ref: path, Width: w, Height: h})
		}

		target, err := render.ProbeDuration(ctx, renderAudio)
		if err != nil {
			return fmt.Errorf("measure audio duration: %w", err)
		}

		tl, err := timeline.Build(timeline.BuildInput{
			Sources:        sources,
			ImageDuration:  cfg.Timing.ImageDurationSec,
			FadeDuration:   cfg.Timing.FadeDurationSec,
			TargetDuration: target,
			FPS:            cfg.Video.FPS,
			Title:          renderTitle,
			Style:          overlayStyle(),
		})
		if err != nil {
			return err
		}
		log.Info().
			Int("images", len(sources)).
			Float64("target_sec", target).
			Str("adjustment", tl.Adjustment.Kind.String()).
			Msg("timeline composed")

		out := renderOut
		if out == "" {
			out = filepath.Join(cfg.Paths.Output, fmt.Sprintf("slideshow_%d.mp4", time.Now().Unix()))
		}
		return render.New(cfg).Render(ctx, tl, renderAudio, out)
	},
}

func init() {
	renderCmd.Flags().StringSliceVar(&renderImages, "image", nil, "image file, repeat for each slide (in order)")
	renderCmd.Flags().StringVar(&renderAudio, "audio", "", "narration audio file")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "title overlaid on the video")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output video path")
	rootCmd.AddCommand(renderCmd)
}
