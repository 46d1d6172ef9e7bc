package strategy

import (
	"context"
	"time"

	"github.com/fwojciec/clipsave"
	"github.com/google/uuid"
)

// LocalName is the registry name of the local download strategy.
const LocalName = "local"

// Ensure LocalStrategy implements clipsave.Strategy.
var _ clipsave.Strategy = (*LocalStrategy)(nil)

// LocalStrategy saves the document and its images through the host
// download subsystem. It must run in the privileged context.
type LocalStrategy struct {
	Tracker clipsave.DownloadTracker
	Assets  clipsave.AssetService

	// Progress, if set, receives asset fetch progress.
	Progress    clipsave.FetchProgressFunc
	Concurrency int
}

// NewLocalStrategy creates a LocalStrategy writing through tracker.
func NewLocalStrategy(tracker clipsave.DownloadTracker, assets clipsave.AssetService) *LocalStrategy {
	return &LocalStrategy{
		Tracker:     tracker,
		Assets:      assets,
		Concurrency: DefaultConcurrency,
	}
}

func (s *LocalStrategy) Descriptor() clipsave.StrategyDescriptor {
	return clipsave.StrategyDescriptor{
		Name:           LocalName,
		DisplayName:    "Local download",
		RunsPrivileged: true,
	}
}

func (s *LocalStrategy) Validate(cfg clipsave.SaveConfig) error {
	return basePathProblem("local base path", cfg.LocalBasePath)
}

// Save writes the document as <base>/<destination>.md and each fetched asset
// at <base>/<remote path>. Asset write failures are counted, not fatal.
func (s *LocalStrategy) Save(ctx context.Context, sc *clipsave.SaveContext) *clipsave.SaveResult {
	if err := sc.Validate(); err != nil {
		return clipsave.NewFailureResult(err)
	}

	bundle := fetchAssets(ctx, s.Assets, sc, s.Progress)
	defer releaseAll(bundle)

	docPath := clipsave.CombinePath(sc.Config.LocalBasePath, sc.DestinationName+".md")
	if !clipsave.IsSafePath(docPath) {
		return clipsave.NewFailureResult(clipsave.Errorf(clipsave.EINVALID, "unsafe destination path %q", docPath))
	}

	res, err := s.Tracker.Track(ctx, clipsave.DownloadOptions{
		URL:      blobURL(),
		Filename: docPath,
		Body:     []byte(bundle.Content),
		Conflict: clipsave.ConflictUniquify,
	}, nil)
	if err != nil {
		return clipsave.NewFailureResult(err)
	}

	fetchFailed := bundle.Failed()
	stats := persistAll(ctx, bundle.Fetched(), s.Concurrency, func(ctx context.Context, task *clipsave.AssetTask) error {
		path := clipsave.CombinePath(sc.Config.LocalBasePath, task.RemotePath)
		if !clipsave.IsSafePath(path) {
			task.Release()
			return clipsave.Errorf(clipsave.EINVALID, "unsafe asset path %q", path)
		}
		_, err := s.Tracker.Track(ctx, clipsave.DownloadOptions{
			URL:      blobURL(),
			Filename: path,
			Body:     task.Payload,
			Conflict: clipsave.ConflictOverwrite,
		}, task.Release)
		return err
	})

	return &clipsave.SaveResult{
		Succeeded:       true,
		DestinationPath: res.Path,
		AssetCount:      1 + stats.succeeded,
		CompletedAt:     time.Now().UTC(),
		Content:         bundle.Content,
		Metrics: &clipsave.SaveMetrics{
			ByteSize:        len(bundle.Content) + stats.bytes,
			AssetsSucceeded: stats.succeeded,
			AssetsFailed:    fetchFailed + stats.failed,
		},
	}
}

// blobURL returns a unique source locator for an in-memory download.
func blobURL() string {
	return "blob:clipsave/" + uuid.NewString()
}
