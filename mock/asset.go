package mock

import (
	"context"

	"github.com/fwojciec/clipsave"
)

var _ clipsave.AssetFetcher = (*AssetFetcher)(nil)

// AssetFetcher is a mock implementation of clipsave.AssetFetcher.
type AssetFetcher struct {
	FetchAssetFn func(ctx context.Context, url string) (*clipsave.AssetPayload, error)
}

func (f *AssetFetcher) FetchAsset(ctx context.Context, url string) (*clipsave.AssetPayload, error) {
	return f.FetchAssetFn(ctx, url)
}

var _ clipsave.AssetService = (*AssetService)(nil)

// AssetService is a mock implementation of clipsave.AssetService.
type AssetService struct {
	PrepareFn  func(content, destinationName, assetsDir string) *clipsave.AssetBundle
	FetchAllFn func(ctx context.Context, bundle *clipsave.AssetBundle, progress clipsave.FetchProgressFunc) *clipsave.AssetBundle
}

func (s *AssetService) Prepare(content, destinationName, assetsDir string) *clipsave.AssetBundle {
	return s.PrepareFn(content, destinationName, assetsDir)
}

func (s *AssetService) FetchAll(ctx context.Context, bundle *clipsave.AssetBundle, progress clipsave.FetchProgressFunc) *clipsave.AssetBundle {
	return s.FetchAllFn(ctx, bundle, progress)
}

var _ clipsave.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of clipsave.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
