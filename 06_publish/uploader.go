package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"folklore-pipeline/config"
	"folklore-pipeline/logger"
	"folklore-pipeline/types"
)

// Uploader pushes a rendered video to YouTube via the Data API v3.
type Uploader struct {
	cfg *config.Config
	log zerolog.Logger
}

func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg, log: logger.Stage("publish")}
}

// CheckCredentials reports whether the OAuth environment is complete.
func CheckCredentials() error {
	for _, key := range []string{"YOUTUBE_CLIENT_ID", "YOUTUBE_CLIENT_SECRET", "YOUTUBE_REFRESH_TOKEN"} {
		if os.Getenv(key) == "" {
			return fmt.Errorf("%s not set", key)
		}
	}
	return nil
}

// Run uploads the video with its metadata and returns the YouTube
// video ID and watch URL.
func (u *Uploader) Run(ctx context.Context, videoFile string, md *types.VideoMetadata) (string, string, error) {
	if err := CheckCredentials(); err != nil {
		return "", "", fmt.Errorf("youtube auth: %w", err)
	}

	conf := &oauth2.Config{
		ClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		ClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}
	token := &oauth2.Token{
		RefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
		Expiry:       time.Now().Add(-time.Hour),
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, token)))
	if err != nil {
		return "", "", fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                md.Title,
			Description:          md.Description,
			Tags:                 md.Tags,
			CategoryId:           md.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           md.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	// Scheduling requires the video to sit private until publishAt.
	if md.ScheduledTimeUTC != "" {
		video.Status.PrivacyStatus = "private"
		video.Status.PublishAt = md.ScheduledTimeUTC
		u.log.Info().Str("publish_at", md.ScheduledTimeUTC).Msg("scheduled publish")
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		u.log.Info().
			Str("title", md.Title).
			Float64("size_mb", float64(fi.Size())/1024/1024).
			Msg("uploading video")
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video).
		NotifySubscribers(u.cfg.Upload.NotifySubscribers).
		Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	videoID := uploaded.Id
	videoURL := "https://www.youtube.com/watch?v=" + videoID
	u.log.Info().Str("video_id", videoID).Str("url", videoURL).Msg("✅ uploaded")
	return videoID, videoURL, nil
}

// LogUpload records the upload result under the logs directory.
func (u *Uploader) LogUpload(videoID, videoURL, videoFile string, md *types.VideoMetadata) error {
	entry := map[string]interface{}{
		"video_id":      videoID,
		"video_url":     videoURL,
		"title":         md.Title,
		"scheduled_utc": md.ScheduledTimeUTC,
		"uploaded_at":   time.Now().UTC().Format(time.RFC3339),
		"video_file":    videoFile,
	}

	if err := os.MkdirAll(u.cfg.Paths.Logs, 0755); err != nil {
		return err
	}
	logFile := filepath.Join(u.cfg.Paths.Logs,
		fmt.Sprintf("upload_%s.json", time.Now().Format("20060102_150405")))
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(logFile, data, 0644); err != nil {
		return err
	}

	u.log.Info().Str("file", logFile).Msg("upload log saved")
	return nil
}
