package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/clipsave"
)

// Ensure LoggingObjectStore implements clipsave.ObjectStore.
var _ clipsave.ObjectStore = (*LoggingObjectStore)(nil)

// LoggingObjectStore wraps an ObjectStore with debug logging.
type LoggingObjectStore struct {
	next   clipsave.ObjectStore
	logger *slog.Logger
}

// NewLoggingObjectStore creates a new LoggingObjectStore.
func NewLoggingObjectStore(next clipsave.ObjectStore, logger *slog.Logger) *LoggingObjectStore {
	return &LoggingObjectStore{next: next, logger: logger}
}

// Exists delegates to the wrapped store and logs the probe.
func (s *LoggingObjectStore) Exists(ctx context.Context, path string) (ok bool) {
	defer func(begin time.Time) {
		s.logger.Debug("exists",
			"path", path,
			"found", ok,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.Exists(ctx, path)
}

// EnsureDirectory delegates to the wrapped store and logs the operation.
func (s *LoggingObjectStore) EnsureDirectory(ctx context.Context, path string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("ensure directory",
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.EnsureDirectory(ctx, path)
}

// Put delegates to the wrapped store and logs the upload.
func (s *LoggingObjectStore) Put(ctx context.Context, path string, data []byte, overwrite bool) (res clipsave.PutResult) {
	defer func(begin time.Time) {
		s.logger.Info("put",
			"path", path,
			"bytes", len(data),
			"overwrite", overwrite,
			"exists", res.FileExists,
			"duration", time.Since(begin),
			"err", res.Err,
		)
	}(time.Now())
	return s.next.Put(ctx, path, data, overwrite)
}
