// Package asset discovers the images referenced by a markdown document,
// rewrites them to local paths and fetches their bytes.
package asset

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/fwojciec/clipsave"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of assets fetched at once.
const DefaultConcurrency = 6

// DefaultExtension is used when the locator has no recognizable image
// extension.
const DefaultExtension = "png"

// imageLinkRE matches markdown image links: ![alt](locator "title").
// Group 2 is the locator. It may contain one level of balanced parentheses
// or be wrapped in angle brackets.
var imageLinkRE = regexp.MustCompile(`!\[([^\]]*)\]\((<[^<>\n]*>|(?:[^()\s<]|\([^()\s]*\))+)((?:\s+"[^"]*")?)\)`)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
	"svg": true, "bmp": true, "avif": true, "ico": true, "tif": true, "tiff": true,
}

// Ensure Service implements clipsave.AssetService at compile time.
var _ clipsave.AssetService = (*Service)(nil)

// Service implements clipsave.AssetService.
type Service struct {
	Fetcher clipsave.AssetFetcher
	// Limiter, if set, throttles requests per host.
	Limiter     clipsave.DomainLimiter
	Concurrency int
}

// NewService creates a Service that fetches through fetcher.
func NewService(fetcher clipsave.AssetFetcher) *Service {
	return &Service{Fetcher: fetcher, Concurrency: DefaultConcurrency}
}

// Prepare finds every remote image link in content, assigns each unique
// locator a file name in first-seen order, and rewrites every occurrence to
// the local reference. Only the locator is replaced; alt text and titles are
// kept.
func (s *Service) Prepare(content, destinationName, assetsDir string) *clipsave.AssetBundle {
	assetsDir = clipsave.SanitizeGeneratedPath(assetsDir)
	if assetsDir == "" {
		assetsDir = clipsave.DefaultAssetsDirName
	}
	dir := clipsave.PathDir(clipsave.SanitizeGeneratedPath(destinationName))

	bundle := &clipsave.AssetBundle{}
	byLocator := make(map[string]*clipsave.AssetTask)

	var b strings.Builder
	last := 0
	for _, m := range imageLinkRE.FindAllStringSubmatchIndex(content, -1) {
		start, end := m[4], m[5]
		if content[start] == '<' {
			start, end = start+1, end-1
		}
		locator := content[start:end]
		if !isRemote(locator) {
			continue
		}

		task, ok := byLocator[locator]
		if !ok {
			filename := fmt.Sprintf("img_%d.%s", len(bundle.Tasks), extensionOf(locator))
			task = &clipsave.AssetTask{
				OriginalLocator: locator,
				Filename:        filename,
				LocalRef:        "./" + assetsDir + "/" + filename,
				RemotePath:      joinPath(dir, assetsDir, filename),
				State:           clipsave.AssetPending,
			}
			byLocator[locator] = task
			bundle.Tasks = append(bundle.Tasks, task)
		}

		b.WriteString(content[last:start])
		task.Offsets = append(task.Offsets, b.Len())
		b.WriteString(task.LocalRef)
		last = end
	}
	b.WriteString(content[last:])
	bundle.Content = b.String()

	return bundle
}

// FetchAll fetches every pending task concurrently. A failed fetch never
// stops the others. Once all tasks settle, the references of failed tasks
// are reverted to their original locators so the content never points at a
// missing file.
func (s *Service) FetchAll(ctx context.Context, bundle *clipsave.AssetBundle, progress clipsave.FetchProgressFunc) *clipsave.AssetBundle {
	var pending []*clipsave.AssetTask
	for _, task := range bundle.Tasks {
		if task.State == clipsave.AssetPending {
			pending = append(pending, task)
		}
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu        sync.Mutex
		completed int
		g         errgroup.Group
	)
	g.SetLimit(concurrency)

	for _, task := range pending {
		g.Go(func() error {
			err := s.fetch(ctx, task)

			mu.Lock()
			defer mu.Unlock()
			completed++
			if progress != nil {
				progress(clipsave.FetchProgress{
					URL:       task.OriginalLocator,
					Completed: completed,
					Total:     len(pending),
					Error:     err,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	bundle.Content = revertFailed(bundle.Content, bundle.Tasks)
	return bundle
}

// fetch moves task through Fetching to Fetched or Failed. A panicking
// fetcher fails the task.
func (s *Service) fetch(ctx context.Context, task *clipsave.AssetTask) (err error) {
	task.State = clipsave.AssetFetching

	defer func() {
		if r := recover(); r != nil {
			err = clipsave.Errorf(clipsave.EINTERNAL, "fetch of %s panicked: %v", task.OriginalLocator, r)
		}
		if err != nil {
			task.State = clipsave.AssetFailed
			task.ErrorDetail = err.Error()
			task.Payload = nil
			return
		}
		task.State = clipsave.AssetFetched
	}()

	return s.download(ctx, task)
}

func (s *Service) download(ctx context.Context, task *clipsave.AssetTask) error {
	if s.Limiter != nil {
		u, err := url.Parse(task.OriginalLocator)
		if err != nil {
			return err
		}
		if err := s.Limiter.Wait(ctx, u.Host); err != nil {
			return err
		}
	}

	payload, err := s.Fetcher.FetchAsset(ctx, task.OriginalLocator)
	if err != nil {
		return err
	}
	if payload == nil || len(payload.Data) == 0 {
		return clipsave.Errorf(clipsave.ENETWORK, "empty response for %s", task.OriginalLocator)
	}

	task.Payload = payload.Data
	task.ContentType = payload.ContentType
	return nil
}

// revertFailed writes the original locator back into every span Prepare
// rewrote for a failed task. Offsets of the remaining tasks are moved to
// match the new content.
func revertFailed(content string, tasks []*clipsave.AssetTask) string {
	type edit struct {
		offset int
		task   *clipsave.AssetTask
	}
	var edits []edit
	for _, task := range tasks {
		if task.State != clipsave.AssetFailed {
			continue
		}
		for _, off := range task.Offsets {
			if off >= 0 && strings.HasPrefix(content[min(off, len(content)):], task.LocalRef) {
				edits = append(edits, edit{offset: off, task: task})
			}
		}
		task.Offsets = nil
	}
	if len(edits) == 0 {
		return content
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].offset < edits[j].offset })

	var b strings.Builder
	last := 0
	for _, e := range edits {
		b.WriteString(content[last:e.offset])
		b.WriteString(e.task.OriginalLocator)
		last = e.offset + len(e.task.LocalRef)
	}
	b.WriteString(content[last:])

	for _, task := range tasks {
		for i, off := range task.Offsets {
			shift := 0
			for _, e := range edits {
				if e.offset < off {
					shift += len(e.task.OriginalLocator) - len(e.task.LocalRef)
				}
			}
			task.Offsets[i] = off + shift
		}
	}
	return b.String()
}

func isRemote(locator string) bool {
	u, err := url.Parse(locator)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// extensionOf infers the file extension from the locator's path.
func extensionOf(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return DefaultExtension
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if imageExtensions[ext] {
		return ext
	}
	return DefaultExtension
}

func joinPath(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}
