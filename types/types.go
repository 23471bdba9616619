package types

// Story is one folklore entry from the content database.
type Story struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	NameRussian    string   `json:"name_russian"`
	Category       string   `json:"category"`
	Theme          string   `json:"theme"`
	StoryFull      string   `json:"story_full"`
	Moral          string   `json:"moral"`
	VisualTags     []string `json:"visual_tags"`
	VoiceTone      string   `json:"voice_tone"`
	DurationTarget int      `json:"duration_target"`
}

// Title is the display name used for the overlay and upload metadata.
// Russian name first, latin name as fallback.
func (s *Story) Title() string {
	if s.NameRussian != "" {
		return s.NameRussian
	}
	return s.Name
}

// ImageAsset is one downloaded and validated image.
type ImageAsset struct {
	Path     string `json:"path"`
	URL      string `json:"url"`
	Provider string `json:"provider"` // unsplash | pexels | pixabay
	RemoteID string `json:"remote_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Narration is the synthesized voice track for one story.
type Narration struct {
	AudioFile   string  `json:"audio_file"`
	Profile     string  `json:"profile"`
	Voice       string  `json:"voice"`
	DurationSec float64 `json:"duration_sec"`
}

// Lead is a scouted story candidate awaiting manual curation.
type Lead struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Subreddit string   `json:"subreddit"`
	URL       string   `json:"url"`
	Score     int      `json:"score"`
	Hooks     []string `json:"hooks"`
	FoundAt   string   `json:"found_at"`
}

// VideoMetadata holds all YouTube upload metadata.
type VideoMetadata struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	CategoryID       string   `json:"category_id"`
	Visibility       string   `json:"visibility"`
	ScheduledTimeUTC string   `json:"scheduled_time_utc"`
}

// RunState tracks the full state of one pipeline run.
type RunState struct {
	RunID       string         `json:"run_id"`
	StartedAt   string         `json:"started_at"`
	CompletedAt string         `json:"completed_at"`
	Story       *Story         `json:"story"`
	Images      []ImageAsset   `json:"images"`
	Narration   *Narration     `json:"narration"`
	VideoFile   string         `json:"video_file"`
	Metadata    *VideoMetadata `json:"metadata"`
	YouTubeURL  string         `json:"youtube_url"`
	YouTubeID   string         `json:"youtube_id"`
	Error       string         `json:"error,omitempty"`
}
