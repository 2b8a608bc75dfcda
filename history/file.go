package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/lixenwraith/statline/toml"
)

// fileDoc is the on-disk layout of a FileStore
type fileDoc struct {
	Entries []string `toml:"entries"`
}

// FileStore keeps history as a TOML document with a single entries array.
// The whole file is rewritten on every Add.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries []string
}

// OpenFile reads the file at path; a missing file starts empty
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history: toml backend needs a path")
	}
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("history: %s: %w", path, err)
	}
	s.entries = doc.Entries
	return s, nil
}

func (s *FileStore) Load(limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.entries
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return append([]string(nil), lines...), nil
}

func (s *FileStore) Add(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, line)
	return s.save()
}

func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(fileDoc{Entries: s.entries})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

func (s *FileStore) Close() error { return nil }
