// Package images collects portrait stock photos for a story from the
// Unsplash, Pexels and Pixabay APIs, filters them for Russian cultural
// relevance, and validates the downloads before the timeline stage
// consumes them.
package images

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"folklore-pipeline/config"
	"folklore-pipeline/logger"
	"folklore-pipeline/types"
)

// cyrillicContext widens an Unsplash query when Latin keywords come up
// short; Unsplash indexes Cyrillic metadata the other providers don't.
const cyrillicContext = "Россия православный изба берёза"

var fallbackKeywords = map[string][]string{
	"household_spirits":  {"russian cottage", "traditional interior", "mystical home"},
	"mythical_creatures": {"fantasy creature", "mythology", "magical being"},
	"superstitions":      {"mysterious ritual", "folk tradition", "ancient custom"},
	"rituals_traditions": {"russian tradition", "cultural celebration", "folk festival"},
	"curses_omens":       {"mystical symbols", "dark magic", "supernatural signs"},
	"folk_heroes":        {"heroic warrior", "legendary figure", "epic battle"},
}

var themeModifiers = map[string]string{
	"dark":   "dark atmospheric",
	"warm":   "warm traditional",
	"winter": "winter snow",
}

type providerQuota struct {
	p     Provider
	quota int
}

// Fetcher downloads a story's slideshow images across the configured
// providers, each within its per-run quota.
type Fetcher struct {
	cfg       *config.Config
	providers []providerQuota
	client    *http.Client
	usage     *UsageLog
	rng       *rand.Rand
	now       func() time.Time
	pause     time.Duration
	log       zerolog.Logger
}

// New builds a Fetcher from whichever provider API keys are present in
// the environment. Missing keys skip that provider with a warning.
func New(cfg *config.Config) *Fetcher {
	log := logger.Stage("images")
	client := &http.Client{Timeout: 30 * time.Second}
	pol := retryPolicy{
		maxRetries: cfg.Images.MaxRetries,
		retryDelay: time.Duration(cfg.Images.RetryDelaySec) * time.Second,
	}

	f := &Fetcher{
		cfg:    cfg,
		client: client,
		usage:  NewUsageLog(cfg.Paths.APIUsageLog, log),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		pause:  time.Second,
		log:    log,
	}

	if key := os.Getenv("UNSPLASH_ACCESS_KEY"); key != "" {
		f.providers = append(f.providers, providerQuota{NewUnsplash(key, client, pol), cfg.Images.UnsplashQuota})
	} else {
		log.Warn().Msg("UNSPLASH_ACCESS_KEY not set, skipping unsplash")
	}
	if key := os.Getenv("PEXELS_API_KEY"); key != "" {
		f.providers = append(f.providers, providerQuota{NewPexels(key, client, pol), cfg.Images.PexelsQuota})
	} else {
		log.Warn().Msg("PEXELS_API_KEY not set, skipping pexels")
	}
	if key := os.Getenv("PIXABAY_API_KEY"); key != "" {
		f.providers = append(f.providers, providerQuota{NewPixabay(key, client, pol), cfg.Images.PixabayQuota})
	} else {
		log.Warn().Msg("PIXABAY_API_KEY not set, skipping pixabay")
	}

	return f
}

// Run fetches up to cfg.Images.Count validated images for the story
// into outputDir. It retries with category fallback keywords when the
// primary query leaves the set below the configured minimum.
func (f *Fetcher) Run(ctx context.Context, story *types.Story, outputDir string) ([]types.ImageAsset, error) {
	if len(f.providers) == 0 {
		return nil, fmt.Errorf("no image providers configured, set at least one of UNSPLASH_ACCESS_KEY, PEXELS_API_KEY, PIXABAY_API_KEY")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	seen := map[string]bool{}
	query := buildQuery(story, f.cfg.Images.ContextKeywords)
	f.log.Info().Str("story", story.ID).Str("query", query).Msg("fetching images")

	assets := f.fetch(ctx, story, query, outputDir, seen)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if len(assets) < f.cfg.Images.MinCount {
		fq := fallbackQuery(story)
		f.log.Warn().
			Int("have", len(assets)).
			Int("need", f.cfg.Images.MinCount).
			Str("fallback_query", fq).
			Msg("short on valid images, retrying with fallback keywords")
		assets = append(assets, f.fetch(ctx, story, fq, outputDir, seen)...)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if len(assets) < f.cfg.Images.MinCount {
		return nil, fmt.Errorf("only %d valid images for %s, need at least %d",
			len(assets), story.ID, f.cfg.Images.MinCount)
	}

	f.rng.Shuffle(len(assets), func(i, j int) {
		assets[i], assets[j] = assets[j], assets[i]
	})
	if len(assets) > f.cfg.Images.Count {
		assets = assets[:f.cfg.Images.Count]
	}

	f.log.Info().Int("count", len(assets)).Msg("✅ images ready")
	return assets, nil
}

// fetch walks the providers in order, downloading and validating
// candidates until quotas or the total target are exhausted.
func (f *Fetcher) fetch(ctx context.Context, story *types.Story, query, outputDir string, seen map[string]bool) []types.ImageAsset {
	var assets []types.ImageAsset

	for _, pq := range f.providers {
		if ctx.Err() != nil {
			return assets
		}
		if len(assets) >= f.cfg.Images.Count {
			break
		}

		candidates := f.search(ctx, pq.p, query, pq.quota)
		if pq.p.Name() == "unsplash" && len(candidates) < pq.quota {
			extra := f.search(ctx, pq.p, cyrillicFallback(story), pq.quota)
			candidates = append(candidates, extra...)
		}

		taken := 0
		for _, photo := range candidates {
			if taken >= pq.quota || len(assets) >= f.cfg.Images.Count {
				break
			}
			key := pq.p.Name() + "_" + photo.ID
			if seen[key] {
				continue
			}
			seen[key] = true

			asset, err := f.take(ctx, pq.p.Name(), photo, outputDir)
			if err != nil {
				f.log.Warn().Err(err).Str("provider", pq.p.Name()).Str("id", photo.ID).Msg("skipping image")
				continue
			}
			assets = append(assets, asset)
			taken++

			if err := sleepCtx(ctx, f.pause); err != nil {
				return assets
			}
		}
		f.log.Info().Str("provider", pq.p.Name()).Int("taken", taken).Msg("provider pass done")
	}
	return assets
}

func (f *Fetcher) search(ctx context.Context, p Provider, query string, quota int) []Photo {
	photos, err := p.Search(ctx, query, quota*2)
	f.usage.Track(p.Name(), "search")
	if err != nil {
		f.log.Warn().Err(err).Str("provider", p.Name()).Msg("search failed")
		return nil
	}

	var kept []Photo
	for _, photo := range photos {
		if CulturallyRelevant(photo.Text) {
			kept = append(kept, photo)
		}
	}
	f.log.Debug().
		Str("provider", p.Name()).
		Int("results", len(photos)).
		Int("relevant", len(kept)).
		Msg("search filtered")
	return kept
}

// take downloads one photo and validates the file before admitting it.
func (f *Fetcher) take(ctx context.Context, provider string, photo Photo, outputDir string) (types.ImageAsset, error) {
	name := fmt.Sprintf("%s_%s_%d.jpg", provider, photo.ID, f.now().Unix())
	path := filepath.Join(outputDir, name)

	if _, err := os.Stat(path); err != nil {
		if err := f.download(ctx, photo.URL, path); err != nil {
			return types.ImageAsset{}, err
		}
		f.usage.Track(provider, "download")
	}

	w, h, err := ValidateFile(path, f.cfg.Images.MinFileBytes, f.cfg.Images.MinWidth, f.cfg.Images.MinHeight)
	if err != nil {
		return types.ImageAsset{}, err
	}

	return types.ImageAsset{
		Path:     path,
		URL:      photo.URL,
		Provider: provider,
		RemoteID: photo.ID,
		Width:    w,
		Height:   h,
	}, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("write image file: %w", err)
	}
	return out.Close()
}

// buildQuery combines the story's strongest visual tags with the
// configured Russian context keywords.
func buildQuery(story *types.Story, contextKeywords []string) string {
	tags := story.VisualTags
	if len(tags) > 2 {
		tags = tags[:2]
	}
	base := strings.Join(tags, " ")
	if base == "" {
		base = "russian folklore"
	}
	if len(contextKeywords) == 0 {
		return base
	}
	return base + " " + strings.Join(contextKeywords, " ")
}

func cyrillicFallback(story *types.Story) string {
	tags := story.VisualTags
	if len(tags) > 2 {
		tags = tags[:2]
	}
	base := strings.Join(tags, " ")
	if base == "" {
		base = "фольклор"
	}
	return base + " " + cyrillicContext
}

// fallbackQuery derives a category-level query for stories whose own
// tags found too few usable photos.
func fallbackQuery(story *types.Story) string {
	kws, ok := fallbackKeywords[story.Category]
	if !ok {
		kws = []string{"russian folklore", "slavic mythology"}
	}
	if len(kws) > 2 {
		kws = kws[:2]
	}
	query := strings.Join(kws, " ")
	if mod, ok := themeModifiers[story.Theme]; ok {
		query += " " + mod
	}
	return query
}
