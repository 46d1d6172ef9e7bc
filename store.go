package clipsave

import "context"

// PutResult is the outcome of ObjectStore.Put.
type PutResult struct {
	Success   bool
	FinalPath string
	// FileExists is set when the write was skipped because the resource
	// exists and overwrite was false. Err is nil in that case.
	FileExists bool
	Err        error
}

// ObjectStore is a path-addressed remote document store.
// Expected failures are reported through return values, never panics.
type ObjectStore interface {
	// Exists reports whether path exists. Probe failures count as absence.
	Exists(ctx context.Context, path string) bool

	// EnsureDirectory creates path and any missing parents.
	// The root directory always succeeds.
	EnsureDirectory(ctx context.Context, path string) error

	// Put writes data to path after ensuring its parent directory.
	Put(ctx context.Context, path string, data []byte, overwrite bool) PutResult
}
