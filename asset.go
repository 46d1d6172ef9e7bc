package clipsave

import "context"

// AssetState tracks an AssetTask through fetching.
type AssetState int

// AssetState constants. Tasks move Pending -> Fetching -> Fetched|Failed.
const (
	AssetPending AssetState = iota
	AssetFetching
	AssetFetched
	AssetFailed
)

func (s AssetState) String() string {
	switch s {
	case AssetPending:
		return "pending"
	case AssetFetching:
		return "fetching"
	case AssetFetched:
		return "fetched"
	case AssetFailed:
		return "failed"
	}
	return "unknown"
}

// AssetTask is one discovered image reference and its fetch lifecycle.
type AssetTask struct {
	// OriginalLocator is the URL as it appeared in the content.
	OriginalLocator string
	// LocalRef is the relative reference written into the content,
	// e.g. "./assets/img_0.jpg".
	LocalRef string
	// Filename is the bare file name, e.g. "img_0.jpg".
	Filename string
	// RemotePath is the destination-relative path of the file,
	// e.g. "notes/2024/assets/img_0.jpg".
	RemotePath string
	// Offsets are the byte offsets in the rewritten content at which
	// LocalRef was written, in ascending order. Only these spans are
	// reverted when the task fails.
	Offsets []int

	Payload     []byte
	ContentType string

	State       AssetState
	ErrorDetail string
}

// Release drops the payload so large buffers are not retained after the
// bytes have been persisted.
func (t *AssetTask) Release() {
	t.Payload = nil
}

// AssetPayload is the body of a fetched asset.
type AssetPayload struct {
	Data        []byte
	ContentType string
}

// AssetFetcher retrieves the bytes behind an asset locator.
type AssetFetcher interface {
	// FetchAsset downloads url. Non-success responses are errors.
	FetchAsset(ctx context.Context, url string) (*AssetPayload, error)
}

// AssetBundle is the caller-owned state of one save session: the rewritten
// content and the tasks it references.
type AssetBundle struct {
	Content string
	Tasks   []*AssetTask
}

// Fetched returns the tasks that hold a payload ready to persist.
func (b *AssetBundle) Fetched() []*AssetTask {
	var tasks []*AssetTask
	for _, t := range b.Tasks {
		if t.State == AssetFetched {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Failed returns the number of tasks that failed to fetch.
func (b *AssetBundle) Failed() int {
	var n int
	for _, t := range b.Tasks {
		if t.State == AssetFailed {
			n++
		}
	}
	return n
}

// FetchProgress reports progress during asset fetching.
type FetchProgress struct {
	URL       string
	Completed int
	Total     int
	Error     error
}

// FetchProgressFunc is called after each asset settles.
type FetchProgressFunc func(FetchProgress)

// AssetService discovers, rewrites and fetches the images of a document.
type AssetService interface {
	// Prepare extracts image references from content and rewrites them to
	// local paths under assetsDir next to destinationName. No network
	// access happens here.
	Prepare(content, destinationName, assetsDir string) *AssetBundle

	// FetchAll fetches every pending task concurrently and reverts the
	// references of failed tasks in the bundle content.
	FetchAll(ctx context.Context, bundle *AssetBundle, progress FetchProgressFunc) *AssetBundle
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
