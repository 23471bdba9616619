package story

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"folklore-pipeline/logger"
	"folklore-pipeline/types"
)

// ContentRotation is the cycle bookkeeping: a shuffled order of every
// database id, consumed front to back and reshuffled when exhausted.
type ContentRotation struct {
	CycleOrder        []string `json:"cycle_order"`
	UsedIDsThisCycle  []string `json:"used_ids_this_cycle"`
	CurrentCycle      int      `json:"current_cycle"`
	LastUsedID        string   `json:"last_used_id"`
	LastGeneratedDate string   `json:"last_generated_date"`
}

// GenerationHistory counts run outcomes across the pipeline's lifetime.
type GenerationHistory struct {
	TotalVideosGenerated  int    `json:"total_videos_generated"`
	SuccessfulGenerations int    `json:"successful_generations"`
	FailedGenerations     int    `json:"failed_generations"`
	LastSuccessDate       string `json:"last_success_date"`
	LastFailureDate       string `json:"last_failure_date"`
	LastErrorMessage      string `json:"last_error_message,omitempty"`
}

// Statistics aggregates successful runs by content dimension.
type Statistics struct {
	ByCategory            map[string]int `json:"by_category"`
	ByVoiceTone           map[string]int `json:"by_voice_tone"`
	AverageGenerationTime float64        `json:"average_generation_time_seconds"`
}

// Metadata is the persistent pipeline state file.
type Metadata struct {
	ContentRotation   ContentRotation   `json:"content_rotation"`
	GenerationHistory GenerationHistory `json:"generation_history"`
	Statistics        Statistics        `json:"statistics"`
	LastUpdate        string            `json:"last_update"`
}

// Rotation selects the next story and records run outcomes. All state
// lives in one JSON file, saved with a backup-then-replace write.
type Rotation struct {
	path string
	db   *Database
	meta *Metadata
	rng  *rand.Rand
	now  func() time.Time
	log  zerolog.Logger
}

// NewRotation loads rotation state from path. A missing file starts
// fresh; a corrupt file is an error rather than a silent reset.
func NewRotation(path string, db *Database) (*Rotation, error) {
	r := &Rotation{
		path: path,
		db:   db,
		meta: &Metadata{},
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
		log:  logger.Stage("story"),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fresh state
	case err != nil:
		return nil, fmt.Errorf("read rotation state: %w", err)
	default:
		if err := json.Unmarshal(data, r.meta); err != nil {
			return nil, fmt.Errorf("parse rotation state %s: %w", path, err)
		}
	}

	if r.meta.Statistics.ByCategory == nil {
		r.meta.Statistics.ByCategory = make(map[string]int)
	}
	if r.meta.Statistics.ByVoiceTone == nil {
		r.meta.Statistics.ByVoiceTone = make(map[string]int)
	}
	return r, nil
}

// Next picks the first unused id in cycle order. When every database id
// has been used, a new cycle starts with a fresh shuffle, so every
// story runs once before any story runs twice.
func (r *Rotation) Next() (*types.Story, error) {
	all := r.db.IDs()
	if len(all) == 0 {
		return nil, fmt.Errorf("folklore database has no entries")
	}

	used := make(map[string]bool, len(r.meta.ContentRotation.UsedIDsThisCycle))
	for _, id := range r.meta.ContentRotation.UsedIDsThisCycle {
		used[id] = true
	}

	complete := true
	for _, id := range all {
		if !used[id] {
			complete = false
			break
		}
	}
	if complete {
		r.startNewCycle(all)
		used = make(map[string]bool)
	}

	if len(r.meta.ContentRotation.CycleOrder) == 0 {
		r.meta.ContentRotation.CycleOrder = r.shuffled(all)
	}

	for _, id := range r.meta.ContentRotation.CycleOrder {
		if used[id] {
			continue
		}
		if s, ok := r.db.Get(id); ok {
			r.log.Info().Str("id", id).Str("name", s.Name).Msg("📖 selected story")
			return s, nil
		}
	}

	// Cycle order can only miss ids if the database shrank mid-cycle.
	r.startNewCycle(all)
	if s, ok := r.db.Get(r.meta.ContentRotation.CycleOrder[0]); ok {
		return s, nil
	}
	return nil, fmt.Errorf("could not select a story from %d entries", len(all))
}

func (r *Rotation) startNewCycle(all []string) {
	r.meta.ContentRotation.CurrentCycle++
	r.meta.ContentRotation.CycleOrder = r.shuffled(all)
	r.meta.ContentRotation.UsedIDsThisCycle = nil
	r.log.Info().Int("cycle", r.meta.ContentRotation.CurrentCycle).Msg("🔄 starting new rotation cycle")
}

func (r *Rotation) shuffled(ids []string) []string {
	order := make([]string, len(ids))
	copy(order, ids)
	r.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

// MarkUsed records that a story ran this cycle.
func (r *Rotation) MarkUsed(id string) {
	cr := &r.meta.ContentRotation
	for _, u := range cr.UsedIDsThisCycle {
		if u == id {
			return
		}
	}
	cr.UsedIDsThisCycle = append(cr.UsedIDsThisCycle, id)
	cr.LastUsedID = id
	cr.LastGeneratedDate = r.now().Format(time.RFC3339)
}

// RecordSuccess updates history and per-dimension statistics after a
// finished run.
func (r *Rotation) RecordSuccess(s *types.Story, generationTime time.Duration) {
	h := &r.meta.GenerationHistory
	h.TotalVideosGenerated++
	h.SuccessfulGenerations++
	h.LastSuccessDate = r.now().Format(time.RFC3339)

	r.meta.Statistics.ByCategory[s.Category]++
	r.meta.Statistics.ByVoiceTone[s.VoiceTone]++

	secs := generationTime.Seconds()
	n := float64(h.SuccessfulGenerations)
	avg := r.meta.Statistics.AverageGenerationTime
	if h.SuccessfulGenerations == 1 {
		r.meta.Statistics.AverageGenerationTime = secs
	} else {
		r.meta.Statistics.AverageGenerationTime = (avg*(n-1) + secs) / n
	}

	r.meta.LastUpdate = r.now().Format(time.RFC3339)
}

// RecordFailure updates history after a failed run.
func (r *Rotation) RecordFailure(errMsg string) {
	h := &r.meta.GenerationHistory
	h.TotalVideosGenerated++
	h.FailedGenerations++
	h.LastFailureDate = r.now().Format(time.RFC3339)
	h.LastErrorMessage = errMsg
	r.meta.LastUpdate = r.now().Format(time.RFC3339)
}

// State exposes the current metadata for status reporting.
func (r *Rotation) State() Metadata {
	return *r.meta
}

// Save writes the state file. The previous version is kept as a .bak
// and restored if the write fails.
func (r *Rotation) Save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	backup := r.path + ".bak"
	hadPrevious := false
	if _, err := os.Stat(r.path); err == nil {
		if err := os.Rename(r.path, backup); err != nil {
			return fmt.Errorf("backup rotation state: %w", err)
		}
		hadPrevious = true
	}

	data, err := json.MarshalIndent(r.meta, "", "  ")
	if err == nil {
		err = os.WriteFile(r.path, data, 0644)
	}
	if err != nil {
		if hadPrevious {
			_ = os.Rename(backup, r.path)
		}
		return fmt.Errorf("save rotation state: %w", err)
	}
	return nil
}
