package images

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// unsplashDailyAlert is where the free Unsplash tier (50/day) starts
// to run out of headroom.
const unsplashDailyAlert = 40

type apiUsage struct {
	TotalRequests  int            `json:"total_requests"`
	RequestsByDay  map[string]int `json:"requests_by_day"`
	RequestsByType map[string]int `json:"requests_by_type"`
	LastRequest    string         `json:"last_request"`
}

// UsageLog counts API requests per provider in a JSON file so daily
// quota pressure is visible across runs.
type UsageLog struct {
	path string

	mu  sync.Mutex
	now func() time.Time
	log zerolog.Logger
}

func NewUsageLog(path string, log zerolog.Logger) *UsageLog {
	return &UsageLog{path: path, now: time.Now, log: log}
}

// Track records one request against api, keyed by request type
// ("search", "download"). Tracking failures are warned, never fatal.
func (u *UsageLog) Track(api, requestType string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	usage, err := u.load()
	if err != nil {
		u.log.Warn().Err(err).Msg("api usage log unreadable, starting fresh")
		usage = map[string]*apiUsage{}
	}

	entry := usage[api]
	if entry == nil {
		entry = &apiUsage{
			RequestsByDay:  map[string]int{},
			RequestsByType: map[string]int{},
		}
		usage[api] = entry
	}

	now := u.now()
	today := now.Format("2006-01-02")
	entry.TotalRequests++
	entry.RequestsByDay[today]++
	entry.RequestsByType[requestType]++
	entry.LastRequest = now.Format(time.RFC3339)

	if api == "unsplash" && entry.RequestsByDay[today] > unsplashDailyAlert {
		u.log.Warn().
			Int("today", entry.RequestsByDay[today]).
			Msg("unsplash daily request count is near the free tier limit")
	}

	if err := u.save(usage); err != nil {
		u.log.Warn().Err(err).Msg("could not save api usage log")
	}
}

// TodayCount returns how many requests api has made today.
func (u *UsageLog) TodayCount(api string) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	usage, err := u.load()
	if err != nil {
		return 0
	}
	entry := usage[api]
	if entry == nil {
		return 0
	}
	return entry.RequestsByDay[u.now().Format("2006-01-02")]
}

func (u *UsageLog) load() (map[string]*apiUsage, error) {
	raw, err := os.ReadFile(u.path)
	if os.IsNotExist(err) {
		return map[string]*apiUsage{}, nil
	}
	if err != nil {
		return nil, err
	}
	usage := map[string]*apiUsage{}
	if err := json.Unmarshal(raw, &usage); err != nil {
		return nil, err
	}
	return usage, nil
}

func (u *UsageLog) save(usage map[string]*apiUsage) error {
	if err := os.MkdirAll(filepath.Dir(u.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(usage, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(u.path, data, 0644)
}
