// Package store persists scraping state between runs: accumulated records,
// provenance stats, and the last run's identity.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/raghavshulka/maps-llm-based-scrapper/models"
)

// Settings is the operator-tunable subset of the configuration, persisted so
// later runs and read-only consumers see what the session ran with.
type Settings struct {
	DelayMs        int    `json:"delay_ms"`
	AutoScroll     bool   `json:"auto_scroll"`
	RemoteFallback bool   `json:"remote_fallback"`
	PromptTemplate string `json:"prompt_template,omitempty"`
}

// State is everything persisted between runs. Records accumulate across
// sessions; a listing seen in an earlier run keeps its original record.
type State struct {
	LastRunID string                  `json:"last_run_id,omitempty"`
	UpdatedAt time.Time               `json:"updated_at"`
	Settings  *Settings               `json:"settings,omitempty"`
	Records   []*models.ListingRecord `json:"records,omitempty"`
	Stats     models.EmailStats       `json:"stats"`
}

// FileStore reads and writes State as JSON at a fixed path. Saves are
// atomic: written to a temp file in the same directory, then renamed.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. Nothing is touched until
// Load or Save is called.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted state. A missing file yields an empty state, not
// an error; a corrupt file is an error so stale data is never silently
// overwritten.
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding state file %s: %w", f.path, err)
	}
	return &state, nil
}

// Save writes state atomically, creating parent directories as needed.
func (f *FileStore) Save(state *State) error {
	state.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// Merge folds a session result into state. New listings are appended in
// session order; listings already present keep their earlier record. Stats
// count only the newly accepted records.
func (s *State) Merge(result *models.SessionResult) {
	if result == nil {
		return
	}
	s.LastRunID = result.RunID

	seen := make(map[string]struct{}, len(s.Records))
	for _, record := range s.Records {
		seen[record.Key()] = struct{}{}
	}
	for _, record := range result.Records {
		if record == nil {
			continue
		}
		key := record.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		s.Records = append(s.Records, record)
		if record.Email != "" {
			s.Stats.Count(record.EmailSource)
		}
	}
}
