package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Photo is one stock search result: its best download URL plus the
// metadata text the cultural filter inspects.
type Photo struct {
	ID     string
	URL    string
	Width  int
	Height int
	Text   string
}

// Provider searches one stock photo API.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, perPage int) ([]Photo, error)
}

// retryPolicy is shared by every provider: exponential backoff on
// transport errors, a capped wait on 429.
type retryPolicy struct {
	maxRetries int
	retryDelay time.Duration
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// rateLimitWait respects X-RateLimit-Reset but never waits over a minute.
func rateLimitWait(h http.Header) time.Duration {
	const max = 60 * time.Second
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			if d := time.Duration(secs) * time.Second; d < max {
				return d
			}
		}
	}
	return max
}

// doSearch runs one search request under the retry policy and returns
// the response body.
func doSearch(ctx context.Context, client *http.Client, build func() (*http.Request, error), pol retryPolicy) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < pol.maxRetries; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err == nil {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("rate limited (429)")
				if err := sleepCtx(ctx, rateLimitWait(resp.Header)); err != nil {
					return nil, err
				}
				continue
			case resp.StatusCode != http.StatusOK:
				lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			case readErr != nil:
				lastErr = readErr
			default:
				return body, nil
			}
		} else {
			lastErr = err
		}
		if attempt < pol.maxRetries-1 {
			if err := sleepCtx(ctx, pol.retryDelay*(1<<attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// --- Unsplash ---

type Unsplash struct {
	key    string
	base   string
	client *http.Client
	pol    retryPolicy
}

func NewUnsplash(key string, client *http.Client, pol retryPolicy) *Unsplash {
	return &Unsplash{key: key, base: "https://api.unsplash.com", client: client, pol: pol}
}

func (u *Unsplash) Name() string { return "unsplash" }

type unsplashResult struct {
	Results []struct {
		ID             string `json:"id"`
		Width          int    `json:"width"`
		Height         int    `json:"height"`
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
			Full    string `json:"full"`
		} `json:"urls"`
		Tags []struct {
			Title string `json:"title"`
		} `json:"tags"`
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"results"`
}

func (u *Unsplash) Search(ctx context.Context, query string, perPage int) ([]Photo, error) {
	if perPage > 30 {
		perPage = 30
	}
	body, err := doSearch(ctx, u.client, func() (*http.Request, error) {
		params := url.Values{}
		params.Set("query", query)
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("orientation", "portrait")
		params.Set("content_filter", "high")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			u.base+"/search/photos?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Client-ID "+u.key)
		req.Header.Set("Accept-Version", "v1")
		return req, nil
	}, u.pol)
	if err != nil {
		return nil, fmt.Errorf("unsplash search: %w", err)
	}

	var result unsplashResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unsplash response: %w", err)
	}

	photos := make([]Photo, 0, len(result.Results))
	for _, r := range result.Results {
		link := r.URLs.Regular
		if link == "" {
			link = r.URLs.Full
		}
		if link == "" {
			continue
		}
		var tags []string
		for _, tg := range r.Tags {
			tags = append(tags, tg.Title)
		}
		photos = append(photos, Photo{
			ID:     r.ID,
			URL:    link,
			Width:  r.Width,
			Height: r.Height,
			Text: strings.Join([]string{
				r.Description, r.AltDescription,
				strings.Join(tags, " "), r.Location.Name, r.User.Name,
			}, " "),
		})
	}
	return photos, nil
}

// --- Pexels ---

type Pexels struct {
	key    string
	base   string
	client *http.Client
	pol    retryPolicy
}

func NewPexels(key string, client *http.Client, pol retryPolicy) *Pexels {
	return &Pexels{key: key, base: "https://api.pexels.com/v1", client: client, pol: pol}
}

func (p *Pexels) Name() string { return "pexels" }

type pexelsResult struct {
	Photos []struct {
		ID           int    `json:"id"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		Photographer string `json:"photographer"`
		Alt          string `json:"alt"`
		Src          struct {
			Original string `json:"original"`
			Large    string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

func (p *Pexels) Search(ctx context.Context, query string, perPage int) ([]Photo, error) {
	if perPage > 80 {
		perPage = 80
	}
	body, err := doSearch(ctx, p.client, func() (*http.Request, error) {
		params := url.Values{}
		params.Set("query", query)
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("orientation", "portrait")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			p.base+"/search?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", p.key)
		return req, nil
	}, p.pol)
	if err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}

	var result pexelsResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("pexels response: %w", err)
	}

	photos := make([]Photo, 0, len(result.Photos))
	for _, r := range result.Photos {
		link := r.Src.Large
		if link == "" {
			link = r.Src.Original
		}
		if link == "" {
			continue
		}
		photos = append(photos, Photo{
			ID:     strconv.Itoa(r.ID),
			URL:    link,
			Width:  r.Width,
			Height: r.Height,
			Text:   r.Alt + " " + r.Photographer,
		})
	}
	return photos, nil
}

// --- Pixabay ---

type Pixabay struct {
	key    string
	base   string
	client *http.Client
	pol    retryPolicy
}

func NewPixabay(key string, client *http.Client, pol retryPolicy) *Pixabay {
	return &Pixabay{key: key, base: "https://pixabay.com/api/", client: client, pol: pol}
}

func (p *Pixabay) Name() string { return "pixabay" }

type pixabayResult struct {
	Hits []struct {
		ID            int    `json:"id"`
		Tags          string `json:"tags"`
		User          string `json:"user"`
		ImageWidth    int    `json:"imageWidth"`
		ImageHeight   int    `json:"imageHeight"`
		LargeImageURL string `json:"largeImageURL"`
		WebformatURL  string `json:"webformatURL"`
	} `json:"hits"`
}

func (p *Pixabay) Search(ctx context.Context, query string, perPage int) ([]Photo, error) {
	if perPage > 200 {
		perPage = 200
	}
	body, err := doSearch(ctx, p.client, func() (*http.Request, error) {
		params := url.Values{}
		params.Set("key", p.key)
		params.Set("q", query)
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("image_type", "photo")
		params.Set("orientation", "vertical")

		return http.NewRequestWithContext(ctx, http.MethodGet, p.base+"?"+params.Encode(), nil)
	}, p.pol)
	if err != nil {
		return nil, fmt.Errorf("pixabay search: %w", err)
	}

	var result pixabayResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("pixabay response: %w", err)
	}

	photos := make([]Photo, 0, len(result.Hits))
	for _, r := range result.Hits {
		link := r.LargeImageURL
		if link == "" {
			link = r.WebformatURL
		}
		if link == "" {
			continue
		}
		photos = append(photos, Photo{
			ID:     strconv.Itoa(r.ID),
			URL:    link,
			Width:  r.ImageWidth,
			Height: r.ImageHeight,
			Text:   r.Tags + " " + r.User,
		})
	}
	return photos, nil
}
