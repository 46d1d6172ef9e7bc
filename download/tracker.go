// Package download turns the host's fire-and-forget download call into a
// single awaitable operation.
package download

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/clipsave"
)

// DefaultTimeout is how long Track waits for a terminal state.
const DefaultTimeout = 120 * time.Second

// DefaultPollInterval is the interval of the redundant status poll.
const DefaultPollInterval = 200 * time.Millisecond

// maxPendingEvents bounds the buffer of events received before the
// download id is known.
const maxPendingEvents = 64

// Ensure Tracker implements clipsave.DownloadTracker at compile time.
var _ clipsave.DownloadTracker = (*Tracker)(nil)

// Tracker waits for host downloads to finish. Completion is observed both
// through the host event stream and by polling Search; whichever reports a
// terminal state first settles the result.
type Tracker struct {
	downloader   clipsave.Downloader
	timeout      time.Duration
	pollInterval time.Duration
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTimeout sets how long Track waits before failing with ETIMEOUT.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		t.timeout = d
	}
}

// WithPollInterval sets the status polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		t.pollInterval = d
	}
}

// NewTracker creates a Tracker for the given host downloader.
func NewTracker(d clipsave.Downloader, opts ...Option) *Tracker {
	t := &Tracker{
		downloader:   d,
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track starts the download described by opts and blocks until it completes,
// is interrupted, fails to start, or times out. Listeners are removed and
// polling stops before Track returns; cleanup runs exactly once.
func (t *Tracker) Track(ctx context.Context, opts clipsave.DownloadOptions, cleanup func()) (*clipsave.DownloadResult, error) {
	tr := &tracking{
		url:      opts.URL,
		filename: opts.Filename,
		out:      newOutcome(),
	}

	unsubscribe := t.downloader.Subscribe(tr.onEvent)
	pollCtx, stopPolling := context.WithCancel(ctx)
	timer := time.NewTimer(t.timeout)
	defer func() {
		timer.Stop()
		stopPolling()
		unsubscribe()
		if cleanup != nil {
			cleanup()
		}
	}()

	go func() {
		id, err := t.downloader.Download(pollCtx, opts)
		if err != nil {
			tr.out.settle(nil, clipsave.Errorf(clipsave.ESTART, "start download %q: %v", opts.Filename, err))
			return
		}
		tr.adopt(id)
	}()

	go t.poll(pollCtx, tr)

	select {
	case <-tr.out.done:
	case <-timer.C:
		tr.out.settle(nil, clipsave.Errorf(clipsave.ETIMEOUT, "download %q did not finish within %s", opts.Filename, t.timeout))
	case <-ctx.Done():
		tr.out.settle(nil, clipsave.Errorf(clipsave.EINTERRUPTED, "download %q: %v", opts.Filename, ctx.Err()))
	}

	return tr.out.result, tr.out.err
}

// poll queries the download state until the tracking context ends.
func (t *Tracker) poll(ctx context.Context, tr *tracking) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tr.out.done:
			return
		case <-ticker.C:
		}

		id := tr.currentID()
		if id == 0 {
			continue
		}
		item, err := t.downloader.Search(ctx, id)
		if err != nil || item == nil {
			continue
		}
		tr.apply(item.ID, item.State, item.Filename, item.Error)
	}
}

// outcome is a single-assignment result cell. The first settle wins and
// every later call is a no-op.
type outcome struct {
	once   sync.Once
	done   chan struct{}
	result *clipsave.DownloadResult
	err    error
}

func newOutcome() *outcome {
	return &outcome{done: make(chan struct{})}
}

// settle stores the result if none was stored yet and reports whether this
// call was the one that did.
func (o *outcome) settle(result *clipsave.DownloadResult, err error) bool {
	won := false
	o.once.Do(func() {
		o.result, o.err = result, err
		won = true
		close(o.done)
	})
	return won
}

// tracking holds the state of one Track call.
type tracking struct {
	url string
	out *outcome

	mu       sync.Mutex
	id       int64
	filename string
	pending  []clipsave.DownloadEvent
}

func (tr *tracking) currentID() int64 {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.id
}

// adopt records the id returned by the start call and replays any events
// that arrived before it was known.
func (tr *tracking) adopt(id int64) {
	tr.mu.Lock()
	if tr.id != 0 {
		tr.mu.Unlock()
		return
	}
	tr.id = id
	replay := tr.pending
	tr.pending = nil
	tr.mu.Unlock()

	for _, ev := range replay {
		if ev.ID == id {
			tr.handle(ev)
		}
	}
}

func (tr *tracking) onEvent(ev clipsave.DownloadEvent) {
	tr.mu.Lock()
	if tr.id == 0 {
		// A created event for our source locator establishes the id even
		// when the start call has not returned yet.
		if ev.Type == clipsave.DownloadCreated && ev.ID != 0 && ev.URL != "" && ev.URL == tr.url {
			tr.mu.Unlock()
			tr.adopt(ev.ID)
			tr.handle(ev)
			return
		}
		if len(tr.pending) == maxPendingEvents {
			tr.pending = tr.pending[1:]
		}
		tr.pending = append(tr.pending, ev)
		tr.mu.Unlock()
		return
	}
	id := tr.id
	tr.mu.Unlock()

	if ev.ID == id {
		tr.handle(ev)
	}
}

func (tr *tracking) handle(ev clipsave.DownloadEvent) {
	tr.apply(ev.ID, ev.State, ev.Filename, ev.Error)
}

func (tr *tracking) apply(id int64, state clipsave.DownloadState, filename, errMsg string) {
	tr.mu.Lock()
	if filename != "" {
		tr.filename = filename
	}
	path := tr.filename
	tr.mu.Unlock()

	switch state {
	case clipsave.DownloadComplete:
		tr.out.settle(&clipsave.DownloadResult{ID: id, Path: path}, nil)
	case clipsave.DownloadInterrupted:
		if errMsg == "" {
			errMsg = "download interrupted"
		}
		tr.out.settle(nil, clipsave.Errorf(clipsave.EINTERRUPTED, "%s", errMsg))
	}
}
