package clipsave

import "context"

// DownloadState is the state of a host download.
type DownloadState string

// DownloadState constants. Complete and Interrupted are terminal.
const (
	DownloadInProgress  DownloadState = "in_progress"
	DownloadComplete    DownloadState = "complete"
	DownloadInterrupted DownloadState = "interrupted"
)

// Terminal reports whether no further transition can happen.
func (s DownloadState) Terminal() bool {
	return s == DownloadComplete || s == DownloadInterrupted
}

// ConflictAction tells the host what to do when the target file exists.
type ConflictAction string

// ConflictAction constants for DownloadOptions.
const (
	ConflictUniquify  ConflictAction = "uniquify"
	ConflictOverwrite ConflictAction = "overwrite"
)

// DownloadOptions describes one download request.
type DownloadOptions struct {
	// URL identifies the source. Events for the download carry it.
	URL      string
	Filename string
	Body     []byte
	Conflict ConflictAction
}

// DownloadEventType distinguishes entries of the host event stream.
type DownloadEventType int

// DownloadEventType constants.
const (
	DownloadCreated DownloadEventType = iota
	DownloadChanged
)

// DownloadEvent is one entry of the host download event stream.
type DownloadEvent struct {
	Type     DownloadEventType
	ID       int64
	URL      string
	State    DownloadState
	Filename string
	Error    string
}

// DownloadItem is the host's view of a download as returned by Search.
type DownloadItem struct {
	ID       int64
	URL      string
	State    DownloadState
	Filename string
	Error    string
}

// Downloader is the host download subsystem. Download returns as soon as
// the transfer is started; completion is only reported through events and
// Search.
type Downloader interface {
	// Download starts a transfer and returns its id.
	Download(ctx context.Context, opts DownloadOptions) (int64, error)

	// Subscribe registers fn for every download event. The returned
	// function removes the subscription.
	Subscribe(fn func(DownloadEvent)) (unsubscribe func())

	// Search returns the current state of the download with the given id.
	// Returns ENOTFOUND if the id is unknown.
	Search(ctx context.Context, id int64) (*DownloadItem, error)
}

// DownloadResult is the terminal success outcome of a tracked download.
type DownloadResult struct {
	ID   int64
	Path string
}

// DownloadTracker turns a fire-and-forget download into one awaitable call.
type DownloadTracker interface {
	// Track starts the download and blocks until it reaches a terminal
	// state or times out. cleanup, if non-nil, runs exactly once.
	Track(ctx context.Context, opts DownloadOptions, cleanup func()) (*DownloadResult, error)
}
