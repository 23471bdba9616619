package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testPolicy() retryPolicy {
	return retryPolicy{maxRetries: 3, retryDelay: time.Millisecond}
}

const unsplashFixture = `{
  "results": [
    {
      "id": "abc123",
      "width": 3000,
      "height": 4500,
      "description": "Wooden church in Suzdal",
      "alt_description": "brown wooden building",
      "urls": {"regular": "http://img.test/abc_regular.jpg", "full": "http://img.test/abc_full.jpg"},
      "tags": [{"title": "russia"}, {"title": "orthodox"}],
      "location": {"name": "Suzdal, Russia"},
      "user": {"name": "Ivan Petrov"}
    },
    {
      "id": "def456",
      "width": 2000,
      "height": 3000,
      "urls": {"full": "http://img.test/def_full.jpg"},
      "user": {"name": "Anna"}
    }
  ]
}`

func TestUnsplashSearch(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(unsplashFixture))
	}))
	defer srv.Close()

	u := NewUnsplash("test-key", srv.Client(), testPolicy())
	u.base = srv.URL

	photos, err := u.Search(context.Background(), "birch forest Russia", 8)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	if gotReq.URL.Path != "/search/photos" {
		t.Errorf("path = %s, want /search/photos", gotReq.URL.Path)
	}
	q := gotReq.URL.Query()
	if q.Get("query") != "birch forest Russia" {
		t.Errorf("query param = %q", q.Get("query"))
	}
	if q.Get("per_page") != "8" {
		t.Errorf("per_page = %q, want 8", q.Get("per_page"))
	}
	if q.Get("orientation") != "portrait" {
		t.Errorf("orientation = %q", q.Get("orientation"))
	}
	if q.Get("content_filter") != "high" {
		t.Errorf("content_filter = %q", q.Get("content_filter"))
	}
	if auth := gotReq.Header.Get("Authorization"); auth != "Client-ID test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if v := gotReq.Header.Get("Accept-Version"); v != "v1" {
		t.Errorf("Accept-Version = %q", v)
	}

	if len(photos) != 2 {
		t.Fatalf("got %d photos, want 2", len(photos))
	}
	if photos[0].ID != "abc123" || photos[0].URL != "http://img.test/abc_regular.jpg" {
		t.Errorf("photo[0] = %+v, want regular URL preferred", photos[0])
	}
	if photos[0].Width != 3000 || photos[0].Height != 4500 {
		t.Errorf("photo[0] dims = %dx%d", photos[0].Width, photos[0].Height)
	}
	for _, want := range []string{"Wooden church in Suzdal", "russia", "orthodox", "Suzdal, Russia", "Ivan Petrov"} {
		if !strings.Contains(photos[0].Text, want) {
			t.Errorf("photo[0].Text %q missing %q", photos[0].Text, want)
		}
	}
	if photos[1].URL != "http://img.test/def_full.jpg" {
		t.Errorf("photo[1].URL = %q, want full URL fallback", photos[1].URL)
	}
}

func TestUnsplashPerPageCap(t *testing.T) {
	var perPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		perPage = r.URL.Query().Get("per_page")
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	u := NewUnsplash("k", srv.Client(), testPolicy())
	u.base = srv.URL
	if _, err := u.Search(context.Background(), "q", 100); err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if perPage != "30" {
		t.Errorf("per_page = %q, want capped at 30", perPage)
	}
}

func TestPexelsSearch(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(`{
  "photos": [
    {
      "id": 101,
      "width": 2400,
      "height": 3600,
      "photographer": "Olga",
      "alt": "Kremlin towers at night",
      "src": {"original": "http://img.test/101_orig.jpg", "large": "http://img.test/101_large.jpg"}
    }
  ]
}`))
	}))
	defer srv.Close()

	p := NewPexels("pexels-key", srv.Client(), testPolicy())
	p.base = srv.URL

	photos, err := p.Search(context.Background(), "kremlin", 4)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	if gotReq.URL.Path != "/search" {
		t.Errorf("path = %s, want /search", gotReq.URL.Path)
	}
	q := gotReq.URL.Query()
	if q.Get("query") != "kremlin" || q.Get("per_page") != "4" || q.Get("orientation") != "portrait" {
		t.Errorf("unexpected params: %v", q)
	}
	if auth := gotReq.Header.Get("Authorization"); auth != "pexels-key" {
		t.Errorf("Authorization = %q, want bare key", auth)
	}

	if len(photos) != 1 {
		t.Fatalf("got %d photos, want 1", len(photos))
	}
	if photos[0].ID != "101" {
		t.Errorf("ID = %q", photos[0].ID)
	}
	if photos[0].URL != "http://img.test/101_large.jpg" {
		t.Errorf("URL = %q, want large preferred", photos[0].URL)
	}
	if !strings.Contains(photos[0].Text, "Kremlin towers") || !strings.Contains(photos[0].Text, "Olga") {
		t.Errorf("Text = %q", photos[0].Text)
	}
}

func TestPixabaySearch(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(`{
  "hits": [
    {
      "id": 777,
      "tags": "samovar, tea, tradition",
      "user": "dmitry",
      "imageWidth": 1440,
      "imageHeight": 2560,
      "largeImageURL": "http://img.test/777_large.jpg",
      "webformatURL": "http://img.test/777_web.jpg"
    },
    {
      "id": 778,
      "tags": "birch",
      "user": "vera",
      "imageWidth": 1080,
      "imageHeight": 1920,
      "webformatURL": "http://img.test/778_web.jpg"
    }
  ]
}`))
	}))
	defer srv.Close()

	p := NewPixabay("pix-key", srv.Client(), testPolicy())
	p.base = srv.URL

	photos, err := p.Search(context.Background(), "samovar", 2)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	q := gotReq.URL.Query()
	if q.Get("key") != "pix-key" {
		t.Errorf("key param = %q", q.Get("key"))
	}
	if q.Get("q") != "samovar" || q.Get("image_type") != "photo" || q.Get("orientation") != "vertical" {
		t.Errorf("unexpected params: %v", q)
	}

	if len(photos) != 2 {
		t.Fatalf("got %d photos, want 2", len(photos))
	}
	if photos[0].URL != "http://img.test/777_large.jpg" {
		t.Errorf("photo[0].URL = %q, want largeImageURL preferred", photos[0].URL)
	}
	if photos[1].URL != "http://img.test/778_web.jpg" {
		t.Errorf("photo[1].URL = %q, want webformatURL fallback", photos[1].URL)
	}
	if !strings.Contains(photos[0].Text, "samovar, tea, tradition") || !strings.Contains(photos[0].Text, "dmitry") {
		t.Errorf("photo[0].Text = %q", photos[0].Text)
	}
}

func TestSearchRetriesOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	u := NewUnsplash("k", srv.Client(), testPolicy())
	u.base = srv.URL

	if _, err := u.Search(context.Background(), "q", 4); err != nil {
		t.Fatalf("Search should succeed after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSearchExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	u := NewUnsplash("k", srv.Client(), testPolicy())
	u.base = srv.URL

	_, err := u.Search(context.Background(), "q", 4)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %v, want last status surfaced", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSearchRecoversFromRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("X-RateLimit-Reset", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	u := NewUnsplash("k", srv.Client(), testPolicy())
	u.base = srv.URL

	if _, err := u.Search(context.Background(), "q", 4); err != nil {
		t.Fatalf("Search should recover from 429: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRateLimitWait(t *testing.T) {
	cases := []struct {
		name  string
		reset string
		want  time.Duration
	}{
		{"missing header", "", 60 * time.Second},
		{"short reset", "5", 5 * time.Second},
		{"zero reset", "0", 0},
		{"huge reset capped", "3600", 60 * time.Second},
		{"garbage", "soon", 60 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			if tc.reset != "" {
				h.Set("X-RateLimit-Reset", tc.reset)
			}
			if got := rateLimitWait(h); got != tc.want {
				t.Errorf("rateLimitWait = %v, want %v", got, tc.want)
			}
		})
	}
}
