package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/clipsave"
)

// Ensure LoggingDownloadTracker implements clipsave.DownloadTracker.
var _ clipsave.DownloadTracker = (*LoggingDownloadTracker)(nil)

// LoggingDownloadTracker wraps a DownloadTracker with debug logging.
type LoggingDownloadTracker struct {
	next   clipsave.DownloadTracker
	logger *slog.Logger
}

// NewLoggingDownloadTracker creates a new LoggingDownloadTracker.
func NewLoggingDownloadTracker(next clipsave.DownloadTracker, logger *slog.Logger) *LoggingDownloadTracker {
	return &LoggingDownloadTracker{next: next, logger: logger}
}

// Track delegates to the wrapped tracker and logs the download.
func (t *LoggingDownloadTracker) Track(ctx context.Context, opts clipsave.DownloadOptions, cleanup func()) (res *clipsave.DownloadResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"filename", opts.Filename,
			"bytes", len(opts.Body),
			"duration", time.Since(begin),
		}
		if res != nil {
			attrs = append(attrs, "id", res.ID, "path", res.Path)
		}
		t.logger.Debug("download", append(attrs, "err", err)...)
	}(time.Now())
	return t.next.Track(ctx, opts, cleanup)
}
