// Package render lowers a composition graph into an ffmpeg invocation
// and executes it. The backend is opaque to everything upstream: it
// receives a finished timeline, produces one artifact or one error, and
// never renegotiates timing.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	timeline "folklore-pipeline/04_timeline"
	"folklore-pipeline/config"
	"folklore-pipeline/logger"
)

// ProbeFunc measures a media file's container duration in seconds.
type ProbeFunc func(ctx context.Context, path string) (float64, error)

// Renderer executes lowered plans. One render is one blocking ffmpeg
// run with a hard timeout; retry policy belongs to the caller.
type Renderer struct {
	cfg   *config.Config
	log   zerolog.Logger
	probe ProbeFunc
}

// New creates a Renderer using ffprobe for output verification.
func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg, log: logger.Stage("render"), probe: ProbeDuration}
}

// Render lowers the timeline, runs ffmpeg and verifies the artifact.
// On any failure the partial output file is removed, so an error return
// can never leave a plausible-looking video behind.
func (r *Renderer) Render(ctx context.Context, tl *timeline.Timeline, audioPath, outPath string) error {
	if _, err := os.Stat(audioPath); err != nil {
		return &timeline.InputError{Reason: fmt.Sprintf("audio file not found: %s", audioPath)}
	}

	plan, err := Lower(tl.Graph(), audioPath, LowerOptions{
		Width:  r.cfg.Video.Width,
		Height: r.cfg.Video.Height,
		FPS:    tl.FPS,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	target := tl.FinalDuration()
	args := encodeArgs(plan, r.cfg.Video, target, outPath)

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RenderTimeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.log.Info().
		Int("images", plan.AudioInputIndex).
		Str("adjustment", tl.Adjustment.Kind.String()).
		Float64("target_sec", target).
		Msg("running ffmpeg")

	if err := cmd.Run(); err != nil {
		_ = os.Remove(outPath)
		be := &timeline.BackendError{Op: "ffmpeg", Stderr: stderrTail(stderr.String())}
		var exitErr *exec.ExitError
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			be.TimedOut = true
		case errors.As(err, &exitErr):
			be.ExitCode = exitErr.ExitCode()
		default:
			be.Err = err
		}
		return be
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(outPath)
		return &timeline.BackendError{Op: "verify", Err: fmt.Errorf("output missing or empty: %s", outPath)}
	}

	measured, err := r.probe(ctx, outPath)
	if err != nil {
		_ = os.Remove(outPath)
		return &timeline.BackendError{Op: "ffprobe", Err: err}
	}
	if diff := math.Abs(measured - target); diff > tl.FramePeriod() {
		_ = os.Remove(outPath)
		return &timeline.BackendError{Op: "verify", Err: fmt.Errorf(
			"output duration %.3fs misses target %.3fs by %.3fs", measured, target, diff)}
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)
	if sizeMB < r.cfg.Render.MinOutputMB {
		r.log.Warn().Float64("size_mb", sizeMB).Msg("output smaller than expected, check encoder settings")
	}
	r.log.Info().
		Str("file", filepath.Base(outPath)).
		Float64("size_mb", sizeMB).
		Float64("duration_sec", measured).
		Msg("✅ slideshow rendered")
	return nil
}

// encodeArgs assembles the full ffmpeg argument list around a plan.
func encodeArgs(p *Plan, v config.VideoConfig, target float64, outPath string) []string {
	args := []string{"-y"}
	args = append(args, p.InputArgs...)
	args = append(args,
		"-filter_complex", p.FilterComplex,
		"-map", p.OutputLabel,
		"-map", fmt.Sprintf("%d:a", p.AudioInputIndex),
		"-c:v", v.Codec,
		"-preset", v.Preset,
		"-crf", strconv.Itoa(v.CRF),
		"-pix_fmt", v.PixelFormat,
		"-r", strconv.Itoa(p.FPS),
		"-c:a", v.AudioCodec,
		"-b:a", v.AudioBitrate,
		"-ar", strconv.Itoa(v.SampleRate),
		"-t", formatSeconds(target),
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	)
	return args
}

// stderrTail keeps the useful end of ffmpeg's chatter for error reports.
func stderrTail(s string) string {
	const max = 1000
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}

// CheckTools reports whether the external binaries the backend shells
// out to are installed.
func CheckTools() error {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found in PATH", tool)
		}
	}
	return nil
}
