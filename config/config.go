package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Story   StoryConfig   `yaml:"story"`
	Images  ImagesConfig  `yaml:"images"`
	Voice   VoiceConfig   `yaml:"voice"`
	Video   VideoConfig   `yaml:"video"`
	Timing  TimingConfig  `yaml:"timing"`
	Overlay OverlayConfig `yaml:"overlay"`
	Render  RenderConfig  `yaml:"render"`
	Upload  UploadConfig  `yaml:"upload"`
	Paths   PathsConfig   `yaml:"paths"`
	Log     LogConfig     `yaml:"log"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"` // console or json
	FilePath string `yaml:"file_path"`
}

type StoryConfig struct {
	Subreddits      []string `yaml:"subreddits"`
	SuggestionLimit int      `yaml:"suggestion_limit"`
	MinRedditScore  int      `yaml:"min_reddit_score"`
}

type ImagesConfig struct {
	Count           int      `yaml:"count"`
	MinCount        int      `yaml:"min_count"`
	MinWidth        int      `yaml:"min_width"`
	MinHeight       int      `yaml:"min_height"`
	MinFileBytes    int64    `yaml:"min_file_bytes"`
	ContextKeywords []string `yaml:"context_keywords"`
	MaxRetries      int      `yaml:"max_retries"`
	RetryDelaySec   int      `yaml:"retry_delay_sec"`
	UnsplashQuota   int      `yaml:"unsplash_quota"`
	PexelsQuota     int      `yaml:"pexels_quota"`
	PixabayQuota    int      `yaml:"pixabay_quota"`
}

type VoiceConfig struct {
	DefaultProfile string  `yaml:"default_profile"`
	OutputFormat   string  `yaml:"output_format"`
	MinDurationSec float64 `yaml:"min_duration_sec"`
	MaxDurationSec float64 `yaml:"max_duration_sec"`
	MaxRetries     int     `yaml:"max_retries"`
}

type VideoConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	FPS          int    `yaml:"fps"`
	Codec        string `yaml:"codec"`
	Preset       string `yaml:"preset"`
	CRF          int    `yaml:"crf"`
	PixelFormat  string `yaml:"pixel_format"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
	SampleRate   int    `yaml:"sample_rate"`
}

type TimingConfig struct {
	ImageDurationSec float64 `yaml:"image_duration_sec"`
	FadeDurationSec  float64 `yaml:"fade_duration_sec"`
}

type OverlayConfig struct {
	FontSize    int    `yaml:"font_size"`
	FontColor   string `yaml:"font_color"`
	BoxColor    string `yaml:"box_color"`
	BoxBorder   int    `yaml:"box_border"`
	ShadowColor string `yaml:"shadow_color"`
	ShadowX     int    `yaml:"shadow_x"`
	ShadowY     int    `yaml:"shadow_y"`
	MarginTop   int    `yaml:"margin_top"`
}

type RenderConfig struct {
	TimeoutSec  int     `yaml:"timeout_sec"`
	MinOutputMB float64 `yaml:"min_output_mb"`
}

type UploadConfig struct {
	Visibility        string   `yaml:"visibility"`
	ScheduleHourLocal int      `yaml:"schedule_hour_local"`
	Timezone          string   `yaml:"timezone"`
	NotifySubscribers bool     `yaml:"notify_subscribers"`
	MadeForKids       bool     `yaml:"made_for_kids"`
	DefaultLanguage   string   `yaml:"default_language"`
	CategoryID        string   `yaml:"category_id"`
	ChannelTags       []string `yaml:"channel_tags"`
}

type PathsConfig struct {
	Database       string `yaml:"database"`
	RotationState  string `yaml:"rotation_state"`
	Suggestions    string `yaml:"suggestions"`
	SeenLeadsLog   string `yaml:"seen_leads_log"`
	APIUsageLog    string `yaml:"api_usage_log"`
	Output         string `yaml:"output"`
	Logs           string `yaml:"logs"`
}

var allowedPresets = map[string]bool{
	"ultrafast": true, "superfast": true, "veryfast": true, "faster": true,
	"fast": true, "medium": true, "slow": true, "slower": true, "veryslow": true,
}

// Default returns the fully populated config the pipeline ships with.
func Default() *Config {
	return &Config{
		Story: StoryConfig{
			Subreddits:      []string{"folklore", "mythology", "slavic_mythology"},
			SuggestionLimit: 10,
			MinRedditScore:  50,
		},
		Images: ImagesConfig{
			Count:        6,
			MinCount:     3,
			MinWidth:     1080,
			MinHeight:    1080,
			MinFileBytes: 10 * 1024,
			ContextKeywords: []string{
				"Russia", "Russian", "Siberia", "Orthodox", "birch forest",
				"wooden architecture", "onion dome", "folk tradition",
			},
			MaxRetries:    3,
			RetryDelaySec: 5,
			UnsplashQuota: 4,
			PexelsQuota:   4,
			PixabayQuota:  2,
		},
		Voice: VoiceConfig{
			DefaultProfile: "warm_grandfather",
			OutputFormat:   "mp3",
			MinDurationSec: 10,
			MaxDurationSec: 45,
			MaxRetries:     3,
		},
		Video: VideoConfig{
			Width:        1080,
			Height:       1920,
			FPS:          30,
			Codec:        "libx264",
			Preset:       "medium",
			CRF:          23,
			PixelFormat:  "yuv420p",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
			SampleRate:   44100,
		},
		Timing: TimingConfig{
			ImageDurationSec: 2.0,
			FadeDurationSec:  0.5,
		},
		Overlay: OverlayConfig{
			FontSize:    70,
			FontColor:   "white",
			BoxColor:    "black@0.6",
			BoxBorder:   20,
			ShadowColor: "black@0.8",
			ShadowX:     2,
			ShadowY:     2,
			MarginTop:   80,
		},
		Render: RenderConfig{
			TimeoutSec:  180,
			MinOutputMB: 0.5,
		},
		Upload: UploadConfig{
			Visibility:        "private",
			ScheduleHourLocal: 18,
			Timezone:          "Europe/Moscow",
			NotifySubscribers: true,
			MadeForKids:       false,
			DefaultLanguage:   "ru",
			CategoryID:        "24",
			ChannelTags:       []string{"folklore", "slavic mythology", "russian folklore", "shorts"},
		},
		Paths: PathsConfig{
			Database:      "content/folklore_database.json",
			RotationState: "content/metadata.json",
			Suggestions:   "content/suggestions.json",
			SeenLeadsLog:  "content/seen_leads.json",
			APIUsageLog:   "output/api_usage.json",
			Output:        "output",
			Logs:          "logs",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a yaml config file, fills gaps with defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills every zero-valued field from Default.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.Story.Subreddits == nil {
		c.Story.Subreddits = d.Story.Subreddits
	}
	if c.Story.SuggestionLimit == 0 {
		c.Story.SuggestionLimit = d.Story.SuggestionLimit
	}
	if c.Story.MinRedditScore == 0 {
		c.Story.MinRedditScore = d.Story.MinRedditScore
	}

	if c.Images.Count == 0 {
		c.Images.Count = d.Images.Count
	}
	if c.Images.MinCount == 0 {
		c.Images.MinCount = d.Images.MinCount
	}
	if c.Images.MinWidth == 0 {
		c.Images.MinWidth = d.Images.MinWidth
	}
	if c.Images.MinHeight == 0 {
		c.Images.MinHeight = d.Images.MinHeight
	}
	if c.Images.MinFileBytes == 0 {
		c.Images.MinFileBytes = d.Images.MinFileBytes
	}
	if c.Images.ContextKeywords == nil {
		c.Images.ContextKeywords = d.Images.ContextKeywords
	}
	if c.Images.MaxRetries == 0 {
		c.Images.MaxRetries = d.Images.MaxRetries
	}
	if c.Images.RetryDelaySec == 0 {
		c.Images.RetryDelaySec = d.Images.RetryDelaySec
	}
	if c.Images.UnsplashQuota == 0 && c.Images.PexelsQuota == 0 && c.Images.PixabayQuota == 0 {
		c.Images.UnsplashQuota = d.Images.UnsplashQuota
		c.Images.PexelsQuota = d.Images.PexelsQuota
		c.Images.PixabayQuota = d.Images.PixabayQuota
	}

	if c.Voice.DefaultProfile == "" {
		c.Voice.DefaultProfile = d.Voice.DefaultProfile
	}
	if c.Voice.OutputFormat == "" {
		c.Voice.OutputFormat = d.Voice.OutputFormat
	}
	if c.Voice.MinDurationSec == 0 {
		c.Voice.MinDurationSec = d.Voice.MinDurationSec
	}
	if c.Voice.MaxDurationSec == 0 {
		c.Voice.MaxDurationSec = d.Voice.MaxDurationSec
	}
	if c.Voice.MaxRetries == 0 {
		c.Voice.MaxRetries = d.Voice.MaxRetries
	}

	if c.Video.Width == 0 {
		c.Video.Width = d.Video.Width
	}
	if c.Video.Height == 0 {
		c.Video.Height = d.Video.Height
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = d.Video.FPS
	}
	if c.Video.Codec == "" {
		c.Video.Codec = d.Video.Codec
	}
	if c.Video.Preset == "" {
		c.Video.Preset = d.Video.Preset
	}
	if c.Video.CRF == 0 {
		c.Video.CRF = d.Video.CRF
	}
	if c.Video.PixelFormat == "" {
		c.Video.PixelFormat = d.Video.PixelFormat
	}
	if c.Video.AudioCodec == "" {
		c.Video.AudioCodec = d.Video.AudioCodec
	}
	if c.Video.AudioBitrate == "" {
		c.Video.AudioBitrate = d.Video.AudioBitrate
	}
	if c.Video.SampleRate == 0 {
		c.Video.SampleRate = d.Video.SampleRate
	}

	if c.Timing.ImageDurationSec == 0 {
		c.Timing.ImageDurationSec = d.Timing.ImageDurationSec
	}
	// A zero fade is a legal request, so only fill it when the whole
	// timing block was omitted.
	if c.Timing.ImageDurationSec == d.Timing.ImageDurationSec && c.Timing.FadeDurationSec == 0 {
		c.Timing.FadeDurationSec = d.Timing.FadeDurationSec
	}

	if c.Overlay.FontSize == 0 {
		c.Overlay.FontSize = d.Overlay.FontSize
	}
	if c.Overlay.FontColor == "" {
		c.Overlay.FontColor = d.Overlay.FontColor
	}
	if c.Overlay.BoxColor == "" {
		c.Overlay.BoxColor = d.Overlay.BoxColor
	}
	if c.Overlay.BoxBorder == 0 {
		c.Overlay.BoxBorder = d.Overlay.BoxBorder
	}
	if c.Overlay.ShadowColor == "" {
		c.Overlay.ShadowColor = d.Overlay.ShadowColor
	}
	if c.Overlay.ShadowX == 0 {
		c.Overlay.ShadowX = d.Overlay.ShadowX
	}
	if c.Overlay.ShadowY == 0 {
		c.Overlay.ShadowY = d.Overlay.ShadowY
	}
	if c.Overlay.MarginTop == 0 {
		c.Overlay.MarginTop = d.Overlay.MarginTop
	}

	if c.Render.TimeoutSec == 0 {
		c.Render.TimeoutSec = d.Render.TimeoutSec
	}
	if c.Render.MinOutputMB == 0 {
		c.Render.MinOutputMB = d.Render.MinOutputMB
	}

	if c.Upload.Visibility == "" {
		c.Upload.Visibility = d.Upload.Visibility
	}
	if c.Upload.ScheduleHourLocal == 0 {
		c.Upload.ScheduleHourLocal = d.Upload.ScheduleHourLocal
	}
	if c.Upload.Timezone == "" {
		c.Upload.Timezone = d.Upload.Timezone
	}
	if c.Upload.DefaultLanguage == "" {
		c.Upload.DefaultLanguage = d.Upload.DefaultLanguage
	}
	if c.Upload.CategoryID == "" {
		c.Upload.CategoryID = d.Upload.CategoryID
	}
	if c.Upload.ChannelTags == nil {
		c.Upload.ChannelTags = d.Upload.ChannelTags
	}

	if c.Paths.Database == "" {
		c.Paths.Database = d.Paths.Database
	}
	if c.Paths.RotationState == "" {
		c.Paths.RotationState = d.Paths.RotationState
	}
	if c.Paths.Suggestions == "" {
		c.Paths.Suggestions = d.Paths.Suggestions
	}
	if c.Paths.SeenLeadsLog == "" {
		c.Paths.SeenLeadsLog = d.Paths.SeenLeadsLog
	}
	if c.Paths.APIUsageLog == "" {
		c.Paths.APIUsageLog = d.Paths.APIUsageLog
	}
	if c.Paths.Output == "" {
		c.Paths.Output = d.Paths.Output
	}
	if c.Paths.Logs == "" {
		c.Paths.Logs = d.Paths.Logs
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate returns the first configuration problem it finds.
func (c *Config) Validate() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("video resolution %dx%d is invalid", c.Video.Width, c.Video.Height)
	}
	if c.Video.FPS <= 0 {
		return fmt.Errorf("video fps %d must be positive", c.Video.FPS)
	}
	if !allowedPresets[c.Video.Preset] {
		return fmt.Errorf("video preset %q is not a known x264 preset", c.Video.Preset)
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return fmt.Errorf("video crf %d outside 0-51", c.Video.CRF)
	}
	if c.Timing.ImageDurationSec <= 0 {
		return fmt.Errorf("image duration %.3fs must be positive", c.Timing.ImageDurationSec)
	}
	if c.Timing.FadeDurationSec < 0 {
		return fmt.Errorf("fade duration %.3fs must not be negative", c.Timing.FadeDurationSec)
	}
	if c.Timing.FadeDurationSec >= c.Timing.ImageDurationSec {
		return fmt.Errorf("fade duration %.3fs must be shorter than image duration %.3fs",
			c.Timing.FadeDurationSec, c.Timing.ImageDurationSec)
	}
	if c.Images.Count < c.Images.MinCount {
		return fmt.Errorf("image count %d below minimum %d", c.Images.Count, c.Images.MinCount)
	}
	if c.Render.TimeoutSec <= 0 {
		return fmt.Errorf("render timeout %ds must be positive", c.Render.TimeoutSec)
	}
	if c.Voice.MinDurationSec >= c.Voice.MaxDurationSec {
		return fmt.Errorf("voice duration window %.1f-%.1fs is empty",
			c.Voice.MinDurationSec, c.Voice.MaxDurationSec)
	}
	switch c.Upload.Visibility {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("upload visibility %q must be public, private or unlisted", c.Upload.Visibility)
	}
	return nil
}

// RenderTimeout is the backend execution ceiling as a duration.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.Render.TimeoutSec) * time.Second
}
