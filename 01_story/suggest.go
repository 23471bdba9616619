package story

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vartanbeno/go-reddit/v2/reddit"

	"folklore-pipeline/config"
	"folklore-pipeline/logger"
	"folklore-pipeline/types"
)

// folkloreHooks boost a lead's score when present
var folkloreHooks = []string{
	"legend", "myth", "folklore", "spirit", "ghost", "ritual",
	"curse", "creature", "tale", "superstition", "demon", "witch",
	"omen", "haunted", "slavic", "baba yaga", "domovoi", "village",
}

// topPoster is the slice of the Reddit API the scout needs.
type topPoster interface {
	TopPosts(ctx context.Context, subreddit string, opts *reddit.ListPostOptions) ([]*reddit.Post, *reddit.Response, error)
}

// Scout finds new folklore story leads on Reddit for manual curation
// into the database. It never writes to the database itself.
type Scout struct {
	cfg    *config.Config
	client topPoster
	seen   map[string]bool
	now    func() time.Time
	log    zerolog.Logger
}

// NewScout builds a scout around a Reddit client. Script-app
// credentials from the environment raise the rate limit; without them
// the scout falls back to the public read-only API.
func NewScout(cfg *config.Config) (*Scout, error) {
	var opts []reddit.Opt
	if ua := os.Getenv("REDDIT_USER_AGENT"); ua != "" {
		opts = append(opts, reddit.WithUserAgent(ua))
	}

	creds := reddit.Credentials{
		ID:       os.Getenv("REDDIT_CLIENT_ID"),
		Secret:   os.Getenv("REDDIT_CLIENT_SECRET"),
		Username: os.Getenv("REDDIT_USERNAME"),
		Password: os.Getenv("REDDIT_PASSWORD"),
	}

	var (
		client *reddit.Client
		err    error
	)
	if creds.ID != "" && creds.Secret != "" && creds.Username != "" && creds.Password != "" {
		client, err = reddit.NewClient(creds, opts...)
	} else {
		client, err = reddit.NewReadonlyClient(opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}

	return &Scout{
		cfg:    cfg,
		client: client.Subreddit,
		seen:   loadSeenLeads(cfg.Paths.SeenLeadsLog),
		now:    time.Now,
		log:    logger.Stage("suggest"),
	}, nil
}

// Run pulls this week's top posts from every configured subreddit,
// keeps the ones that read like folklore material, ranks them and
// remembers their ids so reruns only surface new leads. A subreddit
// that fails to load is skipped with a warning.
func (s *Scout) Run(ctx context.Context) ([]types.Lead, error) {
	var leads []types.Lead

	for _, sub := range s.cfg.Story.Subreddits {
		posts, _, err := s.client.TopPosts(ctx, sub, &reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: 25},
			Time:        "week",
		})
		if err != nil {
			s.log.Warn().Str("subreddit", sub).Err(err).Msg("scrape failed, skipping")
			continue
		}

		found := 0
		for _, post := range posts {
			if post.Score < s.cfg.Story.MinRedditScore {
				continue
			}
			if s.seen[post.ID] {
				continue
			}
			hooks := matchHooks(post.Title + " " + post.Body)
			if len(hooks) == 0 {
				continue
			}
			leads = append(leads, types.Lead{
				ID:        post.ID,
				Title:     post.Title,
				Subreddit: sub,
				URL:       "https://reddit.com" + post.Permalink,
				Score:     scoreLead(post, hooks),
				Hooks:     hooks,
				FoundAt:   s.now().UTC().Format(time.RFC3339),
			})
			found++
		}
		s.log.Info().Str("subreddit", sub).Int("leads", found).Msg("subreddit scanned")
	}

	if len(leads) == 0 {
		return nil, fmt.Errorf("no new leads found in any subreddit")
	}

	sort.Slice(leads, func(i, j int) bool { return leads[i].Score > leads[j].Score })
	if limit := s.cfg.Story.SuggestionLimit; len(leads) > limit {
		leads = leads[:limit]
	}

	for _, l := range leads {
		s.seen[l.ID] = true
	}
	s.saveSeen()

	s.log.Info().Int("count", len(leads)).Msg("✅ leads ranked")
	return leads, nil
}

// scoreLead ranks a post: upvotes as the base, a bonus per folklore
// hook, a bonus for self-posts long enough to retell.
func scoreLead(post *reddit.Post, hooks []string) int {
	score := post.Score
	score += 50 * len(hooks)
	if len(post.Body) > 500 {
		score += 75
	}
	if len(post.Body) > 1500 {
		score += 75
	}
	return score
}

func matchHooks(text string) []string {
	text = strings.ToLower(text)
	var found []string
	for _, h := range folkloreHooks {
		if strings.Contains(text, h) {
			found = append(found, h)
		}
	}
	return found
}

// SaveLeads writes ranked suggestions to a JSON file for curation.
func SaveLeads(path string, leads []types.Lead) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create suggestions dir: %w", err)
	}
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func loadSeenLeads(path string) map[string]bool {
	seen := make(map[string]bool)
	data, err := os.ReadFile(path)
	if err != nil {
		return seen
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return seen
	}
	for _, id := range ids {
		seen[id] = true
	}
	return seen
}

func (s *Scout) saveSeen() {
	ids := make([]string, 0, len(s.seen))
	for id := range s.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, _ := json.MarshalIndent(ids, "", "  ")
	_ = os.MkdirAll(filepath.Dir(s.cfg.Paths.SeenLeadsLog), 0755)
	if err := os.WriteFile(s.cfg.Paths.SeenLeadsLog, data, 0644); err != nil {
		s.log.Warn().Err(err).Msg("could not save seen leads log")
	}
}
