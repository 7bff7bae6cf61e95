package external

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type (
	DiskStore struct {
		rootPath string
	}
)

func NewDiskStore(rootPath string) (*DiskStore, error) {
	if rootPath == "" {
		return nil, fmt.Errorf("disk store needs a location")
	}
	dds := &DiskStore{
		rootPath: rootPath,
	}

	return dds, nil
}

func (dds *DiskStore) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(dds.rootPath, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("error in os.ReadFile: %w", err)
	}
	return b, nil
}

func (dds *DiskStore) Put(_ context.Context, key string, data []byte) error {
	p := filepath.Join(dds.rootPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("error in os.WriteFile: %w", err)
	}
	return nil
}
