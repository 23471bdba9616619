// Package publish builds YouTube listing metadata for a rendered video
// and uploads it through the Data API.
package publish

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"folklore-pipeline/config"
	"folklore-pipeline/types"
)

// titleMaxRunes is the YouTube title limit.
const titleMaxRunes = 100

// maxTags is the practical YouTube tag count ceiling.
const maxTags = 30

// BuildMetadata derives the full YouTube listing for a story's video.
// Everything is deterministic: same story and config, same listing.
// When schedule is true the video is scheduled for the next publish
// slot after now.
func BuildMetadata(cfg *config.Config, story *types.Story, schedule bool, now time.Time) (*types.VideoMetadata, error) {
	md := &types.VideoMetadata{
		Title:       buildTitle(story),
		Description: buildDescription(story),
		Tags:        buildTags(story, cfg.Upload.ChannelTags),
		CategoryID:  cfg.Upload.CategoryID,
		Visibility:  cfg.Upload.Visibility,
	}

	if schedule {
		at, err := NextPublishTime(cfg, now)
		if err != nil {
			return nil, err
		}
		md.ScheduledTimeUTC = at
	}
	return md, nil
}

func buildTitle(story *types.Story) string {
	title := story.Title()
	if story.NameRussian != "" && story.Name != "" && story.NameRussian != story.Name {
		title = fmt.Sprintf("%s (%s)", story.NameRussian, story.Name)
	}
	if withTag := title + " #Shorts"; utf8.RuneCountInString(withTag) <= titleMaxRunes {
		title = withTag
	}
	return truncateRunes(title, titleMaxRunes)
}

func buildDescription(story *types.Story) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(story.StoryFull))

	if moral := strings.TrimSpace(story.Moral); moral != "" {
		sb.WriteString("\n\nМораль: ")
		sb.WriteString(moral)
	}

	sb.WriteString("\n\nРусские народные предания и славянская мифология, рассказанные голосом старого сказителя.")

	var hashtags []string
	for _, tag := range buildTags(story, nil) {
		hashtags = append(hashtags, "#"+strings.ReplaceAll(tag, " ", ""))
	}
	if len(hashtags) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(strings.Join(hashtags, " "))
	}
	return sb.String()
}

// buildTags merges story visual tags, the story category and the
// channel's fixed tags, deduplicated case-insensitively in order.
func buildTags(story *types.Story, channelTags []string) []string {
	var tags []string
	seen := map[string]bool{}
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		key := strings.ToLower(tag)
		if seen[key] || len(tags) >= maxTags {
			return
		}
		seen[key] = true
		tags = append(tags, tag)
	}

	for _, t := range story.VisualTags {
		add(t)
	}
	add(strings.ReplaceAll(story.Category, "_", " "))
	for _, t := range channelTags {
		add(t)
	}
	return tags
}

// NextPublishTime returns the next daily publish slot in the channel's
// timezone, as UTC RFC3339 for the YouTube publishAt field.
func NextPublishTime(cfg *config.Config, now time.Time) (string, error) {
	loc, err := time.LoadLocation(cfg.Upload.Timezone)
	if err != nil {
		return "", fmt.Errorf("load timezone %s: %w", cfg.Upload.Timezone, err)
	}

	local := now.In(loc)
	slot := time.Date(local.Year(), local.Month(), local.Day(),
		cfg.Upload.ScheduleHourLocal, 0, 0, 0, loc)
	if !slot.After(local) {
		slot = slot.AddDate(0, 0, 1)
	}
	return slot.UTC().Format(time.RFC3339), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}
