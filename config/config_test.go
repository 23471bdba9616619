package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Video.Width != 1080 || cfg.Video.Height != 1920 {
		t.Errorf("default resolution = %dx%d, want 1080x1920", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Timing.ImageDurationSec != 2.0 || cfg.Timing.FadeDurationSec != 0.5 {
		t.Errorf("default timing = %.1f/%.1f, want 2.0/0.5",
			cfg.Timing.ImageDurationSec, cfg.Timing.FadeDurationSec)
	}
	if cfg.RenderTimeout() != 180*time.Second {
		t.Errorf("default render timeout = %v, want 180s", cfg.RenderTimeout())
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	partial := `
video:
  fps: 25
timing:
  image_duration_sec: 3.0
  fade_duration_sec: 1.0
`
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Video.FPS != 25 {
		t.Errorf("fps = %d, want explicit 25", cfg.Video.FPS)
	}
	if cfg.Video.Codec != "libx264" {
		t.Errorf("codec = %q, want default libx264", cfg.Video.Codec)
	}
	if cfg.Timing.ImageDurationSec != 3.0 || cfg.Timing.FadeDurationSec != 1.0 {
		t.Errorf("timing = %.1f/%.1f, want explicit 3.0/1.0",
			cfg.Timing.ImageDurationSec, cfg.Timing.FadeDurationSec)
	}
	if cfg.Voice.DefaultProfile != "warm_grandfather" {
		t.Errorf("voice profile = %q, want default warm_grandfather", cfg.Voice.DefaultProfile)
	}
	if cfg.Images.UnsplashQuota != 4 || cfg.Images.PexelsQuota != 4 || cfg.Images.PixabayQuota != 2 {
		t.Errorf("provider quotas = %d/%d/%d, want 4/4/2",
			cfg.Images.UnsplashQuota, cfg.Images.PexelsQuota, cfg.Images.PixabayQuota)
	}
}

func TestLoadRejectsBadTiming(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	bad := `
timing:
  image_duration_sec: 1.0
  fade_duration_sec: 1.5
`
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for fade >= image duration")
	}
	if !strings.Contains(err.Error(), "fade duration") {
		t.Errorf("error %q should mention fade duration", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateVisibility(t *testing.T) {
	cfg := Default()
	cfg.Upload.Visibility = "secret"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown visibility")
	}

	for _, v := range []string{"public", "private", "unlisted"} {
		cfg.Upload.Visibility = v
		if err := cfg.Validate(); err != nil {
			t.Errorf("visibility %q should validate, got %v", v, err)
		}
	}
}

func TestValidatePreset(t *testing.T) {
	cfg := Default()
	cfg.Video.Preset = "turbo"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestApplyDefaultsKeepsZeroFade(t *testing.T) {
	cfg := &Config{}
	cfg.Timing.ImageDurationSec = 4.0
	cfg.ApplyDefaults()
	if cfg.Timing.FadeDurationSec != 0 {
		t.Errorf("explicit zero fade with custom duration became %.2f, want 0",
			cfg.Timing.FadeDurationSec)
	}
}
