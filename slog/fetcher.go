package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/clipsave"
)

// Ensure LoggingAssetFetcher implements clipsave.AssetFetcher.
var _ clipsave.AssetFetcher = (*LoggingAssetFetcher)(nil)

// LoggingAssetFetcher wraps an AssetFetcher with debug logging.
type LoggingAssetFetcher struct {
	next   clipsave.AssetFetcher
	logger *slog.Logger
}

// NewLoggingAssetFetcher creates a new LoggingAssetFetcher.
func NewLoggingAssetFetcher(next clipsave.AssetFetcher, logger *slog.Logger) *LoggingAssetFetcher {
	return &LoggingAssetFetcher{next: next, logger: logger}
}

// FetchAsset delegates to the wrapped fetcher and logs the operation.
func (f *LoggingAssetFetcher) FetchAsset(ctx context.Context, url string) (payload *clipsave.AssetPayload, err error) {
	defer func(begin time.Time) {
		var size int
		if payload != nil {
			size = len(payload.Data)
		}
		f.logger.Info("fetch asset",
			"url", url,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchAsset(ctx, url)
}
