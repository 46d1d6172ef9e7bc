package mock

import (
	"context"

	"github.com/fwojciec/clipsave"
)

var _ clipsave.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of clipsave.Downloader.
type Downloader struct {
	DownloadFn  func(ctx context.Context, opts clipsave.DownloadOptions) (int64, error)
	SubscribeFn func(fn func(clipsave.DownloadEvent)) func()
	SearchFn    func(ctx context.Context, id int64) (*clipsave.DownloadItem, error)
}

func (d *Downloader) Download(ctx context.Context, opts clipsave.DownloadOptions) (int64, error) {
	return d.DownloadFn(ctx, opts)
}

func (d *Downloader) Subscribe(fn func(clipsave.DownloadEvent)) func() {
	return d.SubscribeFn(fn)
}

func (d *Downloader) Search(ctx context.Context, id int64) (*clipsave.DownloadItem, error) {
	return d.SearchFn(ctx, id)
}

var _ clipsave.DownloadTracker = (*DownloadTracker)(nil)

// DownloadTracker is a mock implementation of clipsave.DownloadTracker.
type DownloadTracker struct {
	TrackFn func(ctx context.Context, opts clipsave.DownloadOptions, cleanup func()) (*clipsave.DownloadResult, error)
}

func (t *DownloadTracker) Track(ctx context.Context, opts clipsave.DownloadOptions, cleanup func()) (*clipsave.DownloadResult, error) {
	return t.TrackFn(ctx, opts, cleanup)
}
