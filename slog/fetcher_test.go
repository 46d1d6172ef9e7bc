package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/mock"
	csslog "github.com/fwojciec/clipsave/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingAssetFetcher_FetchAsset(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.AssetFetcher{
			FetchAssetFn: func(context.Context, string) (*clipsave.AssetPayload, error) {
				return &clipsave.AssetPayload{Data: []byte("\x89PNG"), ContentType: "image/png"}, nil
			},
		}

		fetcher := csslog.NewLoggingAssetFetcher(inner, logger)
		payload, err := fetcher.FetchAsset(context.Background(), "https://example.com/a.png")

		require.NoError(t, err)
		assert.Equal(t, "image/png", payload.ContentType)
		output := buf.String()
		assert.Contains(t, output, "fetch asset")
		assert.Contains(t, output, "url=https://example.com/a.png")
		assert.Contains(t, output, "bytes=4")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.AssetFetcher{
			FetchAssetFn: func(context.Context, string) (*clipsave.AssetPayload, error) {
				return nil, errors.New("network error")
			},
		}

		fetcher := csslog.NewLoggingAssetFetcher(inner, logger)
		_, err := fetcher.FetchAsset(context.Background(), "https://example.com/a.png")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
	})
}

func TestLoggingDownloadTracker_Track(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cleaned := false
	inner := &mock.DownloadTracker{
		TrackFn: func(_ context.Context, opts clipsave.DownloadOptions, cleanup func()) (*clipsave.DownloadResult, error) {
			cleanup()
			return &clipsave.DownloadResult{ID: 7, Path: "/dl/" + opts.Filename}, nil
		},
	}

	tracker := csslog.NewLoggingDownloadTracker(inner, logger)
	res, err := tracker.Track(context.Background(), clipsave.DownloadOptions{Filename: "doc.md", Body: []byte("abc")}, func() { cleaned = true })

	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)
	assert.True(t, cleaned)
	output := buf.String()
	assert.Contains(t, output, "msg=download")
	assert.Contains(t, output, "path=/dl/doc.md")
	assert.Contains(t, output, "bytes=3")
}
