package voice

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"folklore-pipeline/config"
	"folklore-pipeline/logger"
	"folklore-pipeline/types"
)

// minStoryRunes guards against truncated story text reaching TTS.
const minStoryRunes = 50

// charsPerSecond approximates average Russian narration speed.
const charsPerSecond = 4.5

// rateTolerance is how far the estimated read time may stray from the
// story's target before the speech rate gets overridden.
const rateTolerance = 2.0

// Synthesizer turns story text into a narration MP3 via the edge-tts
// command line tool.
type Synthesizer struct {
	cfg   *config.Config
	run   func(ctx context.Context, name string, args ...string) error
	probe func(ctx context.Context, path string) (float64, error)
	sleep func(d time.Duration)
	log   zerolog.Logger
}

func New(cfg *config.Config) *Synthesizer {
	return &Synthesizer{
		cfg:   cfg,
		run:   runCommand,
		probe: audioDuration,
		sleep: time.Sleep,
		log:   logger.Stage("voice"),
	}
}

// CheckTool verifies edge-tts is installed.
func CheckTool() error {
	if _, err := exec.LookPath("edge-tts"); err != nil {
		return fmt.Errorf("edge-tts not found in PATH, install with: pip install edge-tts")
	}
	return nil
}

// Run synthesizes the story's narration into outputDir and returns the
// measured result. The audio must land inside the configured duration
// window or the run fails.
func (s *Synthesizer) Run(ctx context.Context, story *types.Story, outputDir string) (*types.Narration, error) {
	text := strings.TrimSpace(story.StoryFull)
	if n := utf8.RuneCountInString(text); n < minStoryRunes {
		return nil, fmt.Errorf("story text for %s is %d characters, need at least %d", story.ID, n, minStoryRunes)
	}

	if !Known(story.VoiceTone) {
		s.log.Warn().Str("tone", story.VoiceTone).Msg("unknown voice tone, using default")
	}
	prof := ProfileFor(story.VoiceTone)

	rate := prof.Rate
	if story.DurationTarget > 0 {
		rate = adjustRate(text, float64(story.DurationTarget), prof.Rate)
		if rate != prof.Rate {
			s.log.Info().Str("rate", rate).Int("target_sec", story.DurationTarget).Msg("adjusted speech rate for target duration")
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	outFile := filepath.Join(outputDir, story.ID+"_narration.mp3")

	s.log.Info().Str("voice", prof.Voice).Str("profile", prof.Name).Msg("generating narration")

	args := []string{
		"--voice", prof.Voice,
		"--rate=" + rate,
		"--pitch=" + prof.Pitch,
		"--text", text,
		"--write-media", outFile,
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.Voice.MaxRetries; attempt++ {
		lastErr = s.run(ctx, "edge-tts", args...)
		if lastErr == nil {
			break
		}
		s.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("edge-tts failed")
		if attempt < s.cfg.Voice.MaxRetries {
			s.sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("edge-tts failed after %d attempts: %w", s.cfg.Voice.MaxRetries, lastErr)
	}

	info, err := os.Stat(outFile)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("narration file empty or missing: %s", outFile)
	}

	dur, err := s.probe(ctx, outFile)
	if err != nil {
		return nil, fmt.Errorf("measure narration duration: %w", err)
	}

	minSec := s.cfg.Voice.MinDurationSec
	maxSec := s.cfg.Voice.MaxDurationSec
	if dur < minSec || dur > maxSec {
		return nil, fmt.Errorf("narration is %.1fs, outside the allowed %.0f to %.0f second window", dur, minSec, maxSec)
	}

	if story.DurationTarget > 0 {
		if diff := math.Abs(dur - float64(story.DurationTarget)); diff > 3.0 {
			s.log.Warn().
				Float64("actual_sec", dur).
				Int("target_sec", story.DurationTarget).
				Msg("narration duration misses target")
		}
	}

	s.log.Info().Str("file", outFile).Float64("duration_sec", dur).Msg("✅ narration ready")
	return &types.Narration{
		AudioFile:   outFile,
		Profile:     prof.Name,
		Voice:       prof.Voice,
		DurationSec: dur,
	}, nil
}

// adjustRate overrides the profile speech rate when the estimated read
// time strays from the story's target duration. Edge TTS caps at +100%
// faster and -50% slower.
func adjustRate(text string, target float64, base string) string {
	estimated := float64(utf8.RuneCountInString(text)) / charsPerSecond
	if math.Abs(estimated-target) <= rateTolerance {
		return base
	}

	mult := estimated / target
	if mult > 1 {
		adj := int((mult - 1) * 100)
		if adj > 100 {
			adj = 100
		}
		return fmt.Sprintf("+%d%%", adj)
	}
	adj := int((1 - mult) * 100)
	if adj > 50 {
		adj = 50
	}
	return fmt.Sprintf("-%d%%", adj)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// audioDuration asks ffprobe for the file's duration in seconds.
func audioDuration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return dur, nil
}
