package kvstore

import (
	"context"

	"github.com/trigoo007/cagcore/pkg/fsx"
)

// FSStore persists each key as its own JSON file under a base directory.
type FSStore struct {
	fs      fsx.FileSystem
	baseDir string
}

func NewFSStore(fs fsx.FileSystem, baseDir string) *FSStore {
	if baseDir == "" {
		baseDir = "global_memory"
	}
	return &FSStore{fs: fs, baseDir: baseDir}
}

func (s *FSStore) path(key string) string {
	return s.fs.Join(s.baseDir, key+".json")
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := s.path(key)
	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		return nil, false, kvErrors.NewWithCause(ErrReadFailed, err)
	}
	if !exists {
		return nil, false, nil
	}
	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, false, kvErrors.NewWithCause(ErrReadFailed, err)
	}
	return data, true, nil
}

func (s *FSStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.fs.WriteFile(ctx, s.path(key), value); err != nil {
		return kvErrors.NewWithCause(ErrWriteFailed, err)
	}
	return nil
}
