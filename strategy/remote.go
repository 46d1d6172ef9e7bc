package strategy

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/fwojciec/clipsave"
)

// RemoteName is the registry name of the WebDAV strategy.
const RemoteName = "webdav"

// Ensure RemoteStrategy implements clipsave.Strategy.
var _ clipsave.Strategy = (*RemoteStrategy)(nil)

// RemoteStrategy uploads the document and its images to an ObjectStore.
// An existing document is never replaced; assets are.
type RemoteStrategy struct {
	// NewStore opens the store described by the save configuration.
	NewStore func(cfg clipsave.WebDAVConfig) (clipsave.ObjectStore, error)
	Assets   clipsave.AssetService

	Progress    clipsave.FetchProgressFunc
	Concurrency int
}

// NewRemoteStrategy creates a RemoteStrategy using newStore per save.
func NewRemoteStrategy(newStore func(clipsave.WebDAVConfig) (clipsave.ObjectStore, error), assets clipsave.AssetService) *RemoteStrategy {
	return &RemoteStrategy{
		NewStore:    newStore,
		Assets:      assets,
		Concurrency: DefaultConcurrency,
	}
}

func (s *RemoteStrategy) Descriptor() clipsave.StrategyDescriptor {
	return clipsave.StrategyDescriptor{
		Name:        RemoteName,
		DisplayName: "WebDAV",
	}
}

func (s *RemoteStrategy) Validate(cfg clipsave.SaveConfig) error {
	dav := cfg.WebDAV
	var problems []error
	if dav.URL == "" {
		problems = append(problems, clipsave.Errorf(clipsave.EINVALID, "webdav url required"))
	} else if u, err := url.Parse(dav.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, clipsave.Errorf(clipsave.EINVALID, "webdav url %q must be an http(s) URL", dav.URL))
	}
	switch dav.AuthScheme {
	case "", clipsave.AuthBasic:
	case clipsave.AuthDigest:
		if dav.Username == "" {
			problems = append(problems, clipsave.Errorf(clipsave.EINVALID, "digest auth requires a username"))
		}
	default:
		problems = append(problems, clipsave.Errorf(clipsave.EINVALID, "unknown auth scheme %q", dav.AuthScheme))
	}
	if err := basePathProblem("webdav base path", dav.BasePath); err != nil {
		problems = append(problems, err)
	}
	return errors.Join(problems...)
}

// Save uploads <base>/<destination>.md without overwriting, then every
// fetched asset at <base>/<remote path> with overwrite. A failed asset upload
// does not undo the document.
func (s *RemoteStrategy) Save(ctx context.Context, sc *clipsave.SaveContext) *clipsave.SaveResult {
	if err := sc.Validate(); err != nil {
		return clipsave.NewFailureResult(err)
	}

	store, err := s.NewStore(sc.Config.WebDAV)
	if err != nil {
		return clipsave.NewFailureResult(err)
	}

	bundle := fetchAssets(ctx, s.Assets, sc, s.Progress)
	defer releaseAll(bundle)
	base := sc.Config.WebDAV.BasePath

	docPath := clipsave.CombinePath(base, sc.DestinationName+".md")
	put := store.Put(ctx, docPath, []byte(bundle.Content), false)
	switch {
	case put.FileExists:
		return clipsave.NewFailureResult(clipsave.Errorf(clipsave.EINVALID, "file already exists: %s", docPath))
	case put.Err != nil:
		return remoteFailure(put.Err)
	case !put.Success:
		return remoteFailure(clipsave.Errorf(clipsave.ENETWORK, "upload of %s failed", docPath))
	}

	fetchFailed := bundle.Failed()
	stats := persistAll(ctx, bundle.Fetched(), s.Concurrency, func(ctx context.Context, task *clipsave.AssetTask) error {
		defer task.Release()
		res := store.Put(ctx, clipsave.CombinePath(base, task.RemotePath), task.Payload, true)
		if res.Err != nil {
			return res.Err
		}
		if !res.Success {
			return clipsave.Errorf(clipsave.ENETWORK, "upload of %s failed", task.RemotePath)
		}
		return nil
	})

	return &clipsave.SaveResult{
		Succeeded:       true,
		DestinationPath: put.FinalPath,
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

// remoteFailure keeps permission errors distinct and reports every other
// store failure as a network failure.
func remoteFailure(err error) *clipsave.SaveResult {
	result := clipsave.NewFailureResult(err)
	if result.FailureKind != clipsave.FailurePermission {
		result.FailureKind = clipsave.FailureNetwork
	}
	return result
}
