package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileStore keeps one JSON file per slot in a directory. A lock file guards
// the directory against other processes sharing it.
type FileStore struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".slots.lock")),
	}, nil
}

func (s *FileStore) Get(_ context.Context, slot string, dst any) (bool, error) {
	if err := validateSlot(slot); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.RLock(); err != nil {
		return false, fmt.Errorf("lock slots: %w", err)
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read slot %s: %w", slot, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", slot, err)
	}
	return true, nil
}

func (s *FileStore) Set(_ context.Context, slot string, value any) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", slot, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock slots: %w", err)
	}
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	if err := os.Rename(tmpPath, s.path(slot)); err != nil {
		return fmt.Errorf("replace slot %s: %w", slot, err)
	}
	return nil
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}
