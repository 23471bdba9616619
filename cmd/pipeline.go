package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	story "folklore-pipeline/01_story"
	images "folklore-pipeline/02_images"
	voice "folklore-pipeline/03_voice"
	timeline "folklore-pipeline/04_timeline"
	render "folklore-pipeline/05_render"
	publish "folklore-pipeline/06_publish"
	"folklore-pipeline/logger"
	"folklore-pipeline/types"
)

// runPipeline executes the full daily generation: story rotation, image
// acquisition, narration, timeline composition, render and statistics,
// with an optional YouTube upload at the end.
func runPipeline(ctx context.Context, uploadVideo, schedule bool) error {
	log := logger.Stage("pipeline")
	start := time.Now()

	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	runID := uuid.NewString()[:8]
	runDir := filepath.Join(cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	log.Info().Str("run_id", runID).Str("dir", runDir).Msg("🎬 folklore pipeline starting")

	db, err := story.LoadDatabase(cfg.Paths.Database)
	if err != nil {
		return fmt.Errorf("content database: %w", err)
	}
	rot, err := story.NewRotation(cfg.Paths.RotationState, db)
	if err != nil {
		return fmt.Errorf("rotation state: %w", err)
	}

	state := &types.RunState{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveJSON(log, filepath.Join(runDir, "run_state.json"), state)
	}()

	// fail records a generation failure in the rotation statistics and
	// surfaces the stage error.
	fail := func(stage string, err error) error {
		state.Error = fmt.Sprintf("%s: %v", stage, err)
		rot.RecordFailure(state.Error)
		if saveErr := rot.Save(); saveErr != nil {
			log.Warn().Err(saveErr).Msg("could not save rotation state")
		}
		return fmt.Errorf("%s: %w", stage, err)
	}

	log.Info().Msg("━━━ stage 1: story selection ━━━")
	entry, err := rot.Next()
	if err != nil {
		return fail("story", err)
	}
	state.Story = entry
	saveJSON(log, filepath.Join(runDir, "story.json"), entry)
	log.Info().Str("id", entry.ID).Str("title", entry.Title()).Str("tone", entry.VoiceTone).Msg("story selected")

	log.Info().Msg("━━━ stage 2: images ━━━")
	fetcher := images.New(cfg)
	assets, err := fetcher.Run(ctx, entry, filepath.Join(runDir, "images"))
	if err != nil {
		return fail("images", err)
	}
	state.Images = assets

	log.Info().Msg("━━━ stage 3: narration ━━━")
	synth := voice.New(cfg)
	narration, err := synth.Run(ctx, entry, filepath.Join(runDir, "audio"))
	if err != nil {
		return fail("voice", err)
	}
	state.Narration = narration

	log.Info().Msg("━━━ stage 4: timeline ━━━")
	tl, err := composeTimeline(assets, narration.DurationSec, entry.Title())
	if err != nil {
		return fail("timeline", err)
	}
	saveJSON(log, filepath.Join(runDir, "timeline.json"), tl)
	log.Info().
		Float64("natural_sec", tl.NaturalDuration).
		Float64("target_sec", tl.TargetDuration).
		Str("adjustment", tl.Adjustment.Kind.String()).
		Msg("timeline composed")

	log.Info().Msg("━━━ stage 5: render ━━━")
	renderer := render.New(cfg)
	videoFile := filepath.Join(runDir, entry.ID+"_short.mp4")
	if err := renderer.Render(ctx, tl, narration.AudioFile, videoFile); err != nil {
		return fail("render", err)
	}
	state.VideoFile = videoFile

	log.Info().Msg("━━━ stage 6: statistics ━━━")
	rot.MarkUsed(entry.ID)
	rot.RecordSuccess(entry, time.Since(start))
	if err := rot.Save(); err != nil {
		log.Warn().Err(err).Msg("could not save rotation state")
	}

	if uploadVideo {
		log.Info().Msg("━━━ stage 7: upload ━━━")
		md, err := publish.BuildMetadata(cfg, entry, schedule, time.Now())
		if err != nil {
			state.Error = fmt.Sprintf("publish: %v", err)
			return fmt.Errorf("publish: %w", err)
		}
		state.Metadata = md
		saveJSON(log, filepath.Join(runDir, "youtube_metadata.json"), md)

		up := publish.New(cfg)
		videoID, videoURL, err := up.Run(ctx, videoFile, md)
		if err != nil {
			state.Error = fmt.Sprintf("upload: %v", err)
			return fmt.Errorf("upload: %w", err)
		}
		state.YouTubeID = videoID
		state.YouTubeURL = videoURL
		if err := up.LogUpload(videoID, videoURL, videoFile, md); err != nil {
			log.Warn().Err(err).Msg("could not write upload log")
		}
	}

	log.Info().
		Str("video", state.VideoFile).
		Dur("elapsed", time.Since(start).Round(time.Second)).
		Msg("✅ pipeline complete")
	return nil
}

// composeTimeline turns downloaded assets and the measured narration
// length into the slideshow timeline.
func composeTimeline(assets []types.ImageAsset, targetSec float64, title string) (*timeline.Timeline, error) {
	sources := make([]timeline.ImageSource, len(assets))
	for i, a := range assets {
		sources[i] = timeline.ImageSource{Ref: a.Path, Width: a.Width, Height: a.Height}
	}
	return timeline.Build(timeline.BuildInput{
		Sources:        sources,
		ImageDuration:  cfg.Timing.ImageDurationSec,
		FadeDuration:   cfg.Timing.FadeDurationSec,
		TargetDuration: targetSec,
		FPS:            cfg.Video.FPS,
		Title:          title,
		Style:          overlayStyle(),
	})
}

// overlayStyle maps the configured title look onto the timeline's
// overlay style.
func overlayStyle() *timeline.OverlayStyle {
	return &timeline.OverlayStyle{
		FontSize:    cfg.Overlay.FontSize,
		FontColor:   cfg.Overlay.FontColor,
		BoxColor:    cfg.Overlay.BoxColor,
		BoxBorder:   cfg.Overlay.BoxBorder,
		ShadowColor: cfg.Overlay.ShadowColor,
		ShadowX:     cfg.Overlay.ShadowX,
		ShadowY:     cfg.Overlay.ShadowY,
		MarginTop:   cfg.Overlay.MarginTop,
	}
}

func saveJSON(log zerolog.Logger, path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not marshal state")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not save state")
	}
}
