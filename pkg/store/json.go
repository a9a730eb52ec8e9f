// Package store persists style records. The JSON store keeps one
// merged snapshot per project on disk, the CSV writer flattens a batch
// of records into a single table, and the Mongo sink mirrors records
// into a queryable collection.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/pystyle/pystyle/pkg/style"
)

// JSONStore stores one style.json per project under
// <root>/<owner>/<name>/. Saving merges into the existing snapshot so
// partial re-runs only overwrite the keys they recomputed.
type JSONStore struct {
	root   string
	logger *log.Logger
}

// NewJSONStore returns a store rooted at root, creating it if needed.
func NewJSONStore(root string, logger *log.Logger) (*JSONStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &JSONStore{root: root, logger: logger}, nil
}

// Path returns the snapshot path for a repo given as "owner/name".
func (s *JSONStore) Path(repo string) string {
	return filepath.Join(s.root, filepath.FromSlash(repo), "style.json")
}

// Load reads the current snapshot for repo. A missing file yields an
// empty record. A malformed file is reported and treated as empty, so
// a later Save replaces it with valid content.
func (s *JSONStore) Load(repo string) style.Record {
	data, err := os.ReadFile(s.Path(repo))
	if err != nil {
		return style.Record{}
	}
	var record style.Record
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("malformed snapshot, starting fresh", "repo", repo, "err", err)
		return style.Record{}
	}
	return record
}

// Save merges record into the existing snapshot for repo and writes
// the result atomically via a temp file and rename.
func (s *JSONStore) Save(repo string, record style.Record) error {
	merged := s.Load(repo)
	merged.Merge(record)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", repo, err)
	}

	path := s.Path(repo)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "style-*.json")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// Repos lists every "owner/name" with a snapshot, sorted.
func (s *JSONStore) Repos() ([]string, error) {
	var repos []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != "style.json" {
			return err
		}
		rel, err := filepath.Rel(s.root, filepath.Dir(path))
		if err != nil {
			return err
		}
		repos = append(repos, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("walk store: %w", err)
	}
	sort.Strings(repos)
	return repos, nil
}
