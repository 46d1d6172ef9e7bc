// Package http provides an HTTP implementation of clipsave.AssetFetcher
// for downloading images referenced by clipped pages.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/clipsave"
)

// DefaultFetchTimeout is the default timeout for one asset request.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxAssetBytes caps the size of a single asset body.
const DefaultMaxAssetBytes = 25 << 20

// DefaultUserAgent is sent with every asset request.
const DefaultUserAgent = "clipsave/1.0"

// Ensure AssetFetcher implements clipsave.AssetFetcher at compile time.
var _ clipsave.AssetFetcher = (*AssetFetcher)(nil)

// AssetFetcher retrieves asset bytes with plain HTTP GET requests.
type AssetFetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	userAgent string
}

// Option configures an AssetFetcher.
type Option func(*AssetFetcher)

// WithTimeout sets the timeout for one asset request.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *AssetFetcher) {
		f.timeout = d
	}
}

// WithMaxBytes sets the largest body accepted. Larger bodies fail the fetch.
func WithMaxBytes(n int64) Option {
	return func(f *AssetFetcher) {
		f.maxBytes = n
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *AssetFetcher) {
		f.userAgent = ua
	}
}

// WithClient sets the underlying HTTP client. Its Timeout is replaced by the
// configured timeout.
func WithClient(c *http.Client) Option {
	return func(f *AssetFetcher) {
		f.client = c
	}
}

// NewAssetFetcher creates a new HTTP-based AssetFetcher.
func NewAssetFetcher(opts ...Option) *AssetFetcher {
	f := &AssetFetcher{
		timeout:   DefaultFetchTimeout,
		maxBytes:  DefaultMaxAssetBytes,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}
	f.client.Timeout = f.timeout

	return f
}

// FetchAsset downloads the asset at url. Transport failures and non-2xx
// responses are returned as ENETWORK errors.
func (f *AssetFetcher) FetchAsset(ctx context.Context, url string) (*clipsave.AssetPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, clipsave.Errorf(clipsave.EINVALID, "invalid asset URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, clipsave.Errorf(clipsave.ENETWORK, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, clipsave.Errorf(clipsave.ENETWORK, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := readAllWithLimit(resp.Body, f.maxBytes)
	if err != nil {
		return nil, clipsave.Errorf(clipsave.ENETWORK, "read %s: %v", url, err)
	}

	return &clipsave.AssetPayload{
		Data:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// errTooLarge reports a body over the configured limit.
var errTooLarge = errors.New("response body too large")

// readAllWithLimit reads r up to limit bytes. A non-positive limit reads
// everything.
func readAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(&io.LimitedReader{R: r, N: limit + 1})
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", errTooLarge, limit)
	}
	return data, nil
}
