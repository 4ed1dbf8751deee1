// Package store persists broker snapshots keyed by strategy name, either
// as JSON files in a directory or as rows in a SQLite database. Both
// backends overwrite by key, so repeated saves of the same state are
// idempotent.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rustyeddy/stratlab/broker"
)

// FileStore writes one JSON file per key under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, "sim_"+key+".json")
}

func (s *FileStore) Save(key string, st broker.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal %q: %w", key, err)
	}

	// Write-then-rename so a crash mid-write never clobbers the last
	// good snapshot.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("store: rename %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Load(key string) (broker.State, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return broker.State{}, false, nil
	}
	if err != nil {
		return broker.State{}, false, fmt.Errorf("store: read %q: %w", key, err)
	}

	var st broker.State
	if err := json.Unmarshal(data, &st); err != nil {
		return broker.State{}, false, fmt.Errorf("store: parse %q: %w", key, err)
	}
	return st, true, nil
}
