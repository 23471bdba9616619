// Package story owns the curated folklore database, the rotation state
// that decides which entry runs next, and the Reddit scout that finds
// new story leads.
package story

import (
	"encoding/json"
	"fmt"
	"os"

	"folklore-pipeline/types"
)

// Database is the curated folklore content file.
type Database struct {
	Folklore []types.Story `json:"folklore"`
}

// LoadDatabase reads and validates the folklore database. Every entry
// needs an id, a name and a full story text; ids must be unique.
func LoadDatabase(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse database %s: %w", path, err)
	}
	if len(db.Folklore) == 0 {
		return nil, fmt.Errorf("folklore database %s has no entries", path)
	}

	seen := make(map[string]bool, len(db.Folklore))
	for i, e := range db.Folklore {
		if e.ID == "" {
			return nil, fmt.Errorf("database entry %d has no id", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("database entry %q appears twice", e.ID)
		}
		seen[e.ID] = true
		if e.Name == "" {
			return nil, fmt.Errorf("database entry %q has no name", e.ID)
		}
		if e.StoryFull == "" {
			return nil, fmt.Errorf("database entry %q has no story text", e.ID)
		}
	}
	return &db, nil
}

// Get returns the entry with the given id.
func (d *Database) Get(id string) (*types.Story, bool) {
	for i := range d.Folklore {
		if d.Folklore[i].ID == id {
			return &d.Folklore[i], true
		}
	}
	return nil, false
}

// IDs returns every entry id in database order.
func (d *Database) IDs() []string {
	ids := make([]string, len(d.Folklore))
	for i := range d.Folklore {
		ids[i] = d.Folklore[i].ID
	}
	return ids
}
