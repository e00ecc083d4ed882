// Package fileblob implements transport.BlobStore backed by the local
// filesystem, using the same secure file/folder helpers the node's
// persistence layer uses.
package fileblob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/driftcommittee/node/fs"
	"github.com/driftcommittee/node/transport"
)

// Store is a filesystem-backed blob store rooted at dir; each key maps
// to one file under dir.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating it with secure permissions
// if it doesn't already exist.
func New(dir string) *Store {
	fs.CreateSecureFolder(dir)
	return &Store{dir: dir}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *Store) Put(_ context.Context, key string, data []byte) error {
	fd, err := fs.CreateSecureFile(s.path(key))
	if err != nil {
		return fmt.Errorf("fileblob: create %q: %w", key, err)
	}
	defer fd.Close()
	if _, err := fd.Write(data); err != nil {
		return fmt.Errorf("fileblob: write %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, transport.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fileblob: read %q: %w", key, err)
	}
	return data, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fileblob: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) HealthCheck(context.Context) error {
	exists, err := fs.Exists(s.dir)
	if err != nil {
		return fmt.Errorf("fileblob: health check: %w", err)
	}
	if !exists {
		return fmt.Errorf("fileblob: root %q does not exist", s.dir)
	}
	return nil
}
