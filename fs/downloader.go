// Package fs provides a local-disk implementation of the host download
// subsystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/clipsave"
)

// Ensure Downloader implements clipsave.Downloader at compile time.
var _ clipsave.Downloader = (*Downloader)(nil)

// Downloader writes download bodies below a base directory. Like a browser
// download manager, Download returns an id immediately and reports the
// outcome only through events and Search.
type Downloader struct {
	baseDir string

	mu       sync.Mutex
	nextID   int64
	items    map[int64]*clipsave.DownloadItem
	reserved map[string]bool
	subs     map[int]func(clipsave.DownloadEvent)
	nextSub  int

	wg sync.WaitGroup
}

// NewDownloader creates a Downloader that writes into baseDir.
func NewDownloader(baseDir string) *Downloader {
	return &Downloader{
		baseDir:  baseDir,
		items:    make(map[int64]*clipsave.DownloadItem),
		reserved: make(map[string]bool),
		subs:     make(map[int]func(clipsave.DownloadEvent)),
	}
}

// Download validates opts, registers the download and starts writing it in
// the background. The write is not bound to ctx; it only ends in a Complete
// or Interrupted event.
func (d *Downloader) Download(ctx context.Context, opts clipsave.DownloadOptions) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !clipsave.IsSafePath(opts.Filename) || !filepath.IsLocal(filepath.FromSlash(opts.Filename)) {
		return 0, clipsave.Errorf(clipsave.EINVALID, "invalid download filename %q", opts.Filename)
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	item := &clipsave.DownloadItem{
		ID:       id,
		URL:      opts.URL,
		State:    clipsave.DownloadInProgress,
		Filename: filepath.Join(d.baseDir, filepath.FromSlash(opts.Filename)),
	}
	d.items[id] = item
	d.mu.Unlock()

	d.emit(clipsave.DownloadEvent{
		Type:     clipsave.DownloadCreated,
		ID:       id,
		URL:      opts.URL,
		State:    clipsave.DownloadInProgress,
		Filename: item.Filename,
	})

	d.wg.Add(1)
	go d.write(id, opts)

	return id, nil
}

// Subscribe registers fn for every download event.
func (d *Downloader) Subscribe(fn func(clipsave.DownloadEvent)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := d.nextSub
	d.nextSub++
	d.subs[key] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, key)
	}
}

// Search returns a copy of the download with the given id.
func (d *Downloader) Search(ctx context.Context, id int64) (*clipsave.DownloadItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	item, ok := d.items[id]
	if !ok {
		return nil, clipsave.Errorf(clipsave.ENOTFOUND, "download %d not found", id)
	}
	cp := *item
	return &cp, nil
}

// Close waits for in-flight writes to finish.
func (d *Downloader) Close() error {
	d.wg.Wait()
	return nil
}

func (d *Downloader) write(id int64, opts clipsave.DownloadOptions) {
	defer d.wg.Done()

	target, err := d.reserve(filepath.Join(d.baseDir, filepath.FromSlash(opts.Filename)), opts.Conflict)
	if err == nil {
		err = writeAtomic(target, opts.Body)
		d.release(target)
	}

	d.mu.Lock()
	item := d.items[id]
	if err != nil {
		item.State = clipsave.DownloadInterrupted
		item.Error = fmt.Sprintf("FILE_FAILED: %v", err)
	} else {
		item.State = clipsave.DownloadComplete
		item.Filename = target
	}
	ev := clipsave.DownloadEvent{
		Type:     clipsave.DownloadChanged,
		ID:       id,
		URL:      item.URL,
		State:    item.State,
		Filename: item.Filename,
		Error:    item.Error,
	}
	d.mu.Unlock()

	d.emit(ev)
}

// reserve picks the final path for a download. With ConflictUniquify an
// existing or in-flight file gets a " (n)" suffix.
func (d *Downloader) reserve(path string, conflict clipsave.ConflictAction) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if conflict == clipsave.ConflictOverwrite {
		d.reserved[path] = true
		return path, nil
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for n := 1; ; n++ {
		if !d.reserved[candidate] {
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				break
			}
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
	d.reserved[candidate] = true
	return candidate, nil
}

func (d *Downloader) release(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.reserved, path)
}

func (d *Downloader) emit(ev clipsave.DownloadEvent) {
	d.mu.Lock()
	subs := make([]func(clipsave.DownloadEvent), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".clipsave-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
