package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/mock"
	csslog "github.com/fwojciec/clipsave/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingObjectStore_Put(t *testing.T) {
	t.Parallel()

	t.Run("logs path and bytes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ObjectStore{
			PutFn: func(_ context.Context, p string, _ []byte, _ bool) clipsave.PutResult {
				return clipsave.PutResult{Success: true, FinalPath: p}
			},
		}

		store := csslog.NewLoggingObjectStore(inner, logger)
		res := store.Put(context.Background(), "Clips/doc.md", []byte("hello"), false)

		require.True(t, res.Success)
		output := buf.String()
		assert.Contains(t, output, "msg=put")
		assert.Contains(t, output, "path=Clips/doc.md")
		assert.Contains(t, output, "bytes=5")
		assert.Contains(t, output, "overwrite=false")
	})

	t.Run("logs existing resource", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ObjectStore{
			PutFn: func(_ context.Context, p string, _ []byte, _ bool) clipsave.PutResult {
				return clipsave.PutResult{FinalPath: p, FileExists: true}
			},
		}

		store := csslog.NewLoggingObjectStore(inner, logger)
		res := store.Put(context.Background(), "doc.md", nil, false)

		assert.True(t, res.FileExists)
		assert.Contains(t, buf.String(), "exists=true")
	})
}

func TestLoggingObjectStore_EnsureDirectory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inner := &mock.ObjectStore{
		EnsureDirectoryFn: func(context.Context, string) error {
			return clipsave.Errorf(clipsave.EPERMISSION, "cannot create a")
		},
		ExistsFn: func(context.Context, string) bool { return true },
	}

	store := csslog.NewLoggingObjectStore(inner, logger)
	err := store.EnsureDirectory(context.Background(), "a/b")
	ok := store.Exists(context.Background(), "a")

	require.Error(t, err)
	assert.True(t, ok)
	output := buf.String()
	assert.Contains(t, output, "ensure directory")
	assert.Contains(t, output, "path=a/b")
	assert.Contains(t, output, "found=true")
}
