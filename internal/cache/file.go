package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/festivaldir/curator/internal/models"
)

// fileEnvelope is the on-disk layout. The wrapper object leaves room for run
// metadata without breaking existing cache files.
type fileEnvelope struct {
	ScoredUsernames map[string]models.Verdict `json:"scored_usernames"`
}

// FileStore keeps verdicts in a single JSON file. Writes go through a temp
// file and rename so a crash mid-save never truncates the cache.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (map[string]models.Verdict, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.Verdict{}, nil
		}
		return nil, fmt.Errorf("failed to read verdict cache: %w", err)
	}

	var envelope fileEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("verdict cache is corrupt: %w", err)
	}
	if envelope.ScoredUsernames == nil {
		envelope.ScoredUsernames = map[string]models.Verdict{}
	}
	return envelope.ScoredUsernames, nil
}

func (s *FileStore) Save(_ context.Context, verdicts map[string]models.Verdict) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(fileEnvelope{ScoredUsernames: verdicts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal verdict cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write verdict cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace verdict cache: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear verdict cache: %w", err)
	}
	return nil
}
