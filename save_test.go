package clipsave_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/clipsave"
	"github.com/stretchr/testify/assert"
)

func TestSaveContext_Validate(t *testing.T) {
	t.Parallel()

	var nilCtx *clipsave.SaveContext
	assert.Equal(t, clipsave.EINVALID, clipsave.ErrorCode(nilCtx.Validate()))

	sc := &clipsave.SaveContext{DestinationName: "../"}
	assert.Equal(t, clipsave.EINVALID, clipsave.ErrorCode(sc.Validate()))

	sc = &clipsave.SaveContext{DestinationName: "notes/article"}
	assert.NoError(t, sc.Validate())
}

func TestSaveContext_AssetsDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, clipsave.DefaultAssetsDirName, (&clipsave.SaveContext{}).AssetsDir())
	assert.Equal(t, "img", (&clipsave.SaveContext{AssetsDirName: "img"}).AssetsDir())
}

func TestNewFailureResult(t *testing.T) {
	t.Parallel()

	t.Run("uses the application message", func(t *testing.T) {
		t.Parallel()

		res := clipsave.NewFailureResult(clipsave.Errorf(clipsave.EPERMISSION, "write denied"))

		assert.False(t, res.Succeeded)
		assert.Equal(t, clipsave.FailurePermission, res.FailureKind)
		assert.Equal(t, "write denied", res.FailureReason)
		assert.False(t, res.CompletedAt.IsZero())
	})

	t.Run("keeps the text of foreign errors", func(t *testing.T) {
		t.Parallel()

		res := clipsave.NewFailureResult(errors.New("disk on fire"))

		assert.Equal(t, clipsave.FailureUnknown, res.FailureKind)
		assert.Equal(t, "disk on fire", res.FailureReason)
	})
}

func TestNewHistoryRecord(t *testing.T) {
	t.Parallel()

	sc := &clipsave.SaveContext{DestinationName: "notes/article", Title: "Article", SourceURL: "https://example.com/a"}

	t.Run("copies the result", func(t *testing.T) {
		t.Parallel()

		r := clipsave.NewHistoryRecord(sc, "local", &clipsave.SaveResult{
			Succeeded:       true,
			DestinationPath: "blob:clipsave/1",
			AssetCount:      3,
		})

		assert.Equal(t, "local", r.Strategy)
		assert.Equal(t, "Article", r.Title)
		assert.Equal(t, "https://example.com/a", r.SourceURL)
		assert.Equal(t, "blob:clipsave/1", r.DestinationPath)
		assert.True(t, r.Succeeded)
		assert.Equal(t, 3, r.AssetCount)
		assert.NoError(t, r.Validate())
	})

	t.Run("falls back to the destination name", func(t *testing.T) {
		t.Parallel()

		r := clipsave.NewHistoryRecord(sc, "webdav", clipsave.NewFailureResult(clipsave.Errorf(clipsave.ENETWORK, "offline")))

		assert.Equal(t, "notes/article", r.DestinationPath)
		assert.Equal(t, clipsave.FailureNetwork, r.FailureKind)
		assert.Equal(t, "offline", r.FailureReason)
	})
}

func TestHistoryRecord_Validate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, clipsave.EINVALID, clipsave.ErrorCode((&clipsave.HistoryRecord{DestinationPath: "x"}).Validate()))
	assert.Equal(t, clipsave.EINVALID, clipsave.ErrorCode((&clipsave.HistoryRecord{Strategy: "local"}).Validate()))
}
