package strategy

import (
	"context"
	"sync"

	"github.com/fwojciec/clipsave"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of assets written in parallel.
const DefaultConcurrency = 4

// persistStats counts the outcome of writing fetched assets.
type persistStats struct {
	succeeded int
	failed    int
	bytes     int
}

// persistAll calls write for every task with at most limit in flight.
// A failing write is counted and does not stop the others.
func persistAll(ctx context.Context, tasks []*clipsave.AssetTask, limit int, write func(context.Context, *clipsave.AssetTask) error) persistStats {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu    sync.Mutex
		stats persistStats
	)
	var g errgroup.Group
	g.SetLimit(limit)
	for _, task := range tasks {
		size := len(task.Payload)
		g.Go(func() error {
			err := safeWrite(ctx, task, write)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				task.State = clipsave.AssetFailed
				task.ErrorDetail = reasonOf(err)
				stats.failed++
				return nil
			}
			stats.succeeded++
			stats.bytes += size
			return nil
		})
	}
	_ = g.Wait()
	return stats
}

// safeWrite calls write and turns a panic into an error.
func safeWrite(ctx context.Context, task *clipsave.AssetTask, write func(context.Context, *clipsave.AssetTask) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = clipsave.Errorf(clipsave.EINTERNAL, "write of %s panicked: %v", task.RemotePath, r)
		}
	}()
	return write(ctx, task)
}

// releaseAll drops the payloads that were not released by persistence,
// which happens when the save ends before an asset is written.
func releaseAll(bundle *clipsave.AssetBundle) {
	for _, task := range bundle.Tasks {
		if task.Payload != nil {
			task.Release()
		}
	}
}

// fetchAssets runs the asset service over the tasks of sc and returns the
// content with failed references reverted.
func fetchAssets(ctx context.Context, svc clipsave.AssetService, sc *clipsave.SaveContext, progress clipsave.FetchProgressFunc) *clipsave.AssetBundle {
	bundle := &clipsave.AssetBundle{Content: sc.Content, Tasks: sc.Assets}
	if svc == nil || len(sc.Assets) == 0 {
		return bundle
	}
	return svc.FetchAll(ctx, bundle, progress)
}

// basePathProblem validates a user-supplied base path. Empty is allowed.
func basePathProblem(field, p string) error {
	if p == "" {
		return nil
	}
	clean := clipsave.SanitizeUserPath(p)
	if clean == "" {
		return clipsave.Errorf(clipsave.EINVALID, "%s %q has no usable segments", field, p)
	}
	if !clipsave.IsSafePath(clean) {
		return clipsave.Errorf(clipsave.EINVALID, "%s %q is not a safe path", field, p)
	}
	return nil
}
