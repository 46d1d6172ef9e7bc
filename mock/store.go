package mock

import (
	"context"

	"github.com/fwojciec/clipsave"
)

var _ clipsave.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is a mock implementation of clipsave.ObjectStore.
type ObjectStore struct {
	ExistsFn          func(ctx context.Context, path string) bool
	EnsureDirectoryFn func(ctx context.Context, path string) error
	PutFn             func(ctx context.Context, path string, data []byte, overwrite bool) clipsave.PutResult
}

func (s *ObjectStore) Exists(ctx context.Context, path string) bool {
	return s.ExistsFn(ctx, path)
}

func (s *ObjectStore) EnsureDirectory(ctx context.Context, path string) error {
	return s.EnsureDirectoryFn(ctx, path)
}

func (s *ObjectStore) Put(ctx context.Context, path string, data []byte, overwrite bool) clipsave.PutResult {
	return s.PutFn(ctx, path, data, overwrite)
}
