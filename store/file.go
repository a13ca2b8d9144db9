package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

var _ Store = (*FileStore)(nil)

// FileStore persists values in a single JSON file under the data mount, so
// model versions survive container restarts. Writes go through a temp file
// rename to avoid torn files.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	values map[string]map[string]string // project -> key -> value
}

func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore{
		path:   path,
		logger: logger,
		values: make(map[string]map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read store file %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &s.values); err != nil {
		return fmt.Errorf("parse store file %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Get(ctx context.Context, project, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projectValues, ok := s.values[project]
	if !ok {
		return "", ErrNotFound
	}
	v, ok := projectValues[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(ctx context.Context, project, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[project] == nil {
		s.values[project] = make(map[string]string)
	}
	s.values[project][key] = value
	if err := s.flush(); err != nil {
		s.logger.Error("Failed to persist store", zap.String("path", s.path), zap.Error(err))
		return err
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
