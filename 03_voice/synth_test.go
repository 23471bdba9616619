package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"folklore-pipeline/config"
	"folklore-pipeline/types"
)

func storyText() string {
	return strings.Repeat("За печью старого дома живёт домовой. ", 5)
}

type synthHarness struct {
	synth  *Synthesizer
	calls  [][]string
	sleeps []time.Duration
}

func newSynthHarness(t *testing.T, failures int, duration float64) *synthHarness {
	t.Helper()
	h := &synthHarness{}
	h.synth = &Synthesizer{
		cfg: config.Default(),
		run: func(ctx context.Context, name string, args ...string) error {
			h.calls = append(h.calls, append([]string{name}, args...))
			if len(h.calls) <= failures {
				return errors.New("tts backend unavailable")
			}
			return os.WriteFile(args[len(args)-1], []byte("mp3data"), 0644)
		},
		probe: func(ctx context.Context, path string) (float64, error) {
			return duration, nil
		},
		sleep: func(d time.Duration) { h.sleeps = append(h.sleeps, d) },
		log:   zerolog.Nop(),
	}
	return h
}

func TestSynthesizeWritesNarration(t *testing.T) {
	dir := t.TempDir()
	h := newSynthHarness(t, 0, 25.4)

	story := &types.Story{ID: "domovoi", StoryFull: storyText(), VoiceTone: "warm_grandfather"}
	n, err := h.synth.Run(context.Background(), story, dir)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	wantFile := filepath.Join(dir, "domovoi_narration.mp3")
	wantCall := []string{
		"edge-tts",
		"--voice", "ru-RU-DmitryNeural",
		"--rate=+0%",
		"--pitch=-5Hz",
		"--text", strings.TrimSpace(storyText()),
		"--write-media", wantFile,
	}
	if len(h.calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(h.calls))
	}
	if !reflect.DeepEqual(h.calls[0], wantCall) {
		t.Errorf("edge-tts call:\n got %q\nwant %q", h.calls[0], wantCall)
	}

	want := &types.Narration{
		AudioFile:   wantFile,
		Profile:     "warm_grandfather",
		Voice:       "ru-RU-DmitryNeural",
		DurationSec: 25.4,
	}
	if !reflect.DeepEqual(n, want) {
		t.Errorf("narration = %+v, want %+v", n, want)
	}
}

func TestSynthesizeUnknownToneFallsBack(t *testing.T) {
	h := newSynthHarness(t, 0, 20)

	story := &types.Story{ID: "x", StoryFull: storyText(), VoiceTone: "spooky_whisper"}
	n, err := h.synth.Run(context.Background(), story, t.TempDir())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if n.Profile != DefaultProfile || n.Voice != "ru-RU-DmitryNeural" {
		t.Errorf("narration = %+v, want default profile", n)
	}
}

func TestSynthesizeRetriesThenSucceeds(t *testing.T) {
	h := newSynthHarness(t, 2, 20)

	story := &types.Story{ID: "x", StoryFull: storyText()}
	if _, err := h.synth.Run(context.Background(), story, t.TempDir()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(h.calls) != 3 {
		t.Errorf("got %d attempts, want 3", len(h.calls))
	}
	wantSleeps := []time.Duration{2 * time.Second, 4 * time.Second}
	if !reflect.DeepEqual(h.sleeps, wantSleeps) {
		t.Errorf("sleeps = %v, want %v", h.sleeps, wantSleeps)
	}
}

func TestSynthesizeFailsAfterRetries(t *testing.T) {
	h := newSynthHarness(t, 99, 20)
	h.synth.cfg.Voice.MaxRetries = 2

	story := &types.Story{ID: "x", StoryFull: storyText()}
	_, err := h.synth.Run(context.Background(), story, t.TempDir())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("error = %v", err)
	}
	if len(h.sleeps) != 1 {
		t.Errorf("sleeps = %v, want one backoff between two attempts", h.sleeps)
	}
}

func TestSynthesizeRejectsShortText(t *testing.T) {
	h := newSynthHarness(t, 0, 20)

	story := &types.Story{ID: "x", StoryFull: "Коротко."}
	_, err := h.synth.Run(context.Background(), story, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "need at least 50") {
		t.Fatalf("error = %v, want short text rejection", err)
	}
	if len(h.calls) != 0 {
		t.Errorf("edge-tts ran despite invalid text")
	}
}

func TestSynthesizeRejectsDurationOutsideWindow(t *testing.T) {
	for _, dur := range []float64{5.0, 60.0} {
		t.Run(fmt.Sprintf("%.0fs", dur), func(t *testing.T) {
			h := newSynthHarness(t, 0, dur)
			story := &types.Story{ID: "x", StoryFull: storyText()}
			_, err := h.synth.Run(context.Background(), story, t.TempDir())
			if err == nil || !strings.Contains(err.Error(), "outside the allowed") {
				t.Fatalf("error = %v, want duration window rejection", err)
			}
		})
	}
}

func TestSynthesizeRejectsEmptyOutput(t *testing.T) {
	h := newSynthHarness(t, 0, 20)
	h.synth.run = func(ctx context.Context, name string, args ...string) error {
		return nil
	}

	story := &types.Story{ID: "x", StoryFull: storyText()}
	_, err := h.synth.Run(context.Background(), story, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "empty or missing") {
		t.Fatalf("error = %v, want missing output rejection", err)
	}
}

func TestSynthesizeAppliesTargetRate(t *testing.T) {
	h := newSynthHarness(t, 0, 20)

	story := &types.Story{
		ID:             "x",
		StoryFull:      strings.Repeat("а", 135),
		VoiceTone:      "warm_grandfather",
		DurationTarget: 20,
	}
	if _, err := h.synth.Run(context.Background(), story, t.TempDir()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	var found bool
	for _, arg := range h.calls[0] {
		if arg == "--rate=+50%" {
			found = true
		}
	}
	if !found {
		t.Errorf("call %q missing adjusted rate +50%%", h.calls[0])
	}
}

func TestAdjustRate(t *testing.T) {
	cases := []struct {
		name   string
		runes  int
		target float64
		base   string
		want   string
	}{
		{"on target keeps profile rate", 90, 20, "+0%", "+0%"},
		{"within tolerance keeps profile rate", 90, 21.9, "-5%", "-5%"},
		{"speeds up", 135, 20, "+0%", "+50%"},
		{"slows down", 76, 20, "+0%", "-15%"},
		{"slowdown capped at half speed", 45, 20, "+0%", "-50%"},
		{"speedup capped at double speed", 450, 10, "+0%", "+100%"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Repeat("б", tc.runes)
			if got := adjustRate(text, tc.target, tc.base); got != tc.want {
				t.Errorf("adjustRate(%d runes, %.1fs) = %q, want %q", tc.runes, tc.target, got, tc.want)
			}
		})
	}
}
