package clientsession

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage is the durable client-side backing for the session snapshot: one
// serialized blob under a single well-known key, surviving a restart.
type Storage interface {
	// Load returns the stored blob and whether one exists.
	Load() ([]byte, bool, error)
	Save(data []byte) error
	Clear() error
}

// FileStorage keeps the snapshot in a single JSON file.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultStoragePath places the snapshot file under the user cache
// directory.
func DefaultStoragePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("clientsession: cache dir: %w", err)
	}
	return filepath.Join(dir, "social-login", "session.json"), nil
}

func (f *FileStorage) Load() ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("clientsession: read %s: %w", f.path, err)
	}
	return data, true, nil
}

func (f *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("clientsession: mkdir: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("clientsession: write %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStorage) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clientsession: remove %s: %w", f.path, err)
	}
	return nil
}
