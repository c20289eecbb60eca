package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tubefetch/tubefetch/internal/domain"
)

// LocalStore is the filesystem area holding download artifacts. Every path
// handed to Open or Remove is resolved and verified to lie within the
// storage root before it is touched; anything escaping the root reads as
// not-found rather than leaking existence information.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", abs, err)
	}
	return &LocalStore{root: abs}, nil
}

// PathFor builds the on-disk path for a new artifact. The name is reduced to
// its base so callers cannot smuggle separators into the root.
func (s *LocalStore) PathFor(filename string) string {
	return filepath.Join(s.root, filepath.Base(filename))
}

func (s *LocalStore) contains(path string) (string, bool) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", false
	}
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", false
	}
	return abs, true
}

func (s *LocalStore) Open(path string) (io.ReadCloser, int64, error) {
	abs, ok := s.contains(path)
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, 0, domain.ErrNotFound
	}
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		f.Close()
		return nil, 0, domain.ErrNotFound
	}
	return f, fi.Size(), nil
}

func (s *LocalStore) Remove(path string) error {
	abs, ok := s.contains(path)
	if !ok {
		return domain.ErrNotFound
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Ready verifies the storage root is writable; used by the readiness probe.
func (s *LocalStore) Ready() error {
	probe, err := os.CreateTemp(s.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
