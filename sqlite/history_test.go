package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(strategy, dest string, ok bool) *clipsave.HistoryRecord {
	r := &clipsave.HistoryRecord{
		Strategy:        strategy,
		Title:           "Article",
		SourceURL:       "https://example.com/article",
		DestinationPath: dest,
		Succeeded:       ok,
		AssetCount:      1,
	}
	if !ok {
		r.FailureKind = clipsave.FailureNetwork
		r.FailureReason = "HTTP 503"
		r.AssetCount = 0
	}
	return r
}

func TestHistoryService_CreateRecord(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID, timestamp and content hash", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		r := newRecord("local", "notes/article.md", true)

		err := svc.CreateRecord(context.Background(), r, "# Article")
		require.NoError(t, err)

		assert.NotEmpty(t, r.ID)
		assert.False(t, r.CreatedAt.IsZero())
		assert.Len(t, r.ContentHash, 16)
	})

	t.Run("same content hashes the same", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		a := newRecord("local", "a.md", true)
		b := newRecord("webdav", "b.md", true)
		c := newRecord("webdav", "c.md", true)

		require.NoError(t, svc.CreateRecord(context.Background(), a, "same"))
		require.NoError(t, svc.CreateRecord(context.Background(), b, "same"))
		require.NoError(t, svc.CreateRecord(context.Background(), c, "different"))

		assert.Equal(t, a.ContentHash, b.ContentHash)
		assert.NotEqual(t, a.ContentHash, c.ContentHash)
	})

	t.Run("returns error for invalid record", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))

		err := svc.CreateRecord(context.Background(), &clipsave.HistoryRecord{}, "")

		require.Error(t, err)
		assert.Equal(t, clipsave.EINVALID, clipsave.ErrorCode(err))
	})
}

func TestHistoryService_FindRecords(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) *sqlite.HistoryService {
		t.Helper()
		svc := sqlite.NewHistoryService(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, svc.CreateRecord(ctx, newRecord("local", "one.md", true), "1"))
		require.NoError(t, svc.CreateRecord(ctx, newRecord("webdav", "two.md", false), "2"))
		require.NoError(t, svc.CreateRecord(ctx, newRecord("webdav", "three.md", true), "3"))
		return svc
	}

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		records, err := seed(t).FindRecords(context.Background(), clipsave.HistoryFilter{})
		require.NoError(t, err)

		require.Len(t, records, 3)
		assert.Equal(t, "three.md", records[0].DestinationPath)
		assert.Equal(t, "one.md", records[2].DestinationPath)
	})

	t.Run("filters by strategy", func(t *testing.T) {
		t.Parallel()

		strategy := "webdav"
		records, err := seed(t).FindRecords(context.Background(), clipsave.HistoryFilter{Strategy: &strategy})
		require.NoError(t, err)

		require.Len(t, records, 2)
		for _, r := range records {
			assert.Equal(t, "webdav", r.Strategy)
		}
	})

	t.Run("filters by outcome", func(t *testing.T) {
		t.Parallel()

		failed := false
		records, err := seed(t).FindRecords(context.Background(), clipsave.HistoryFilter{Succeeded: &failed})
		require.NoError(t, err)

		require.Len(t, records, 1)
		assert.Equal(t, "two.md", records[0].DestinationPath)
		assert.Equal(t, clipsave.FailureNetwork, records[0].FailureKind)
		assert.Equal(t, "HTTP 503", records[0].FailureReason)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		svc := seed(t)
		ctx := context.Background()

		page, err := svc.FindRecords(ctx, clipsave.HistoryFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "two.md", page[0].DestinationPath)

		rest, err := svc.FindRecords(ctx, clipsave.HistoryFilter{Offset: 2})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, "one.md", rest[0].DestinationPath)
	})

	t.Run("round trips every field", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		r := newRecord("local", "x.md", true)
		r.AssetCount = 4
		require.NoError(t, svc.CreateRecord(context.Background(), r, fmt.Sprintf("%d", 42)))

		records, err := svc.FindRecords(context.Background(), clipsave.HistoryFilter{})
		require.NoError(t, err)
		require.Len(t, records, 1)

		got := records[0]
		assert.Equal(t, r.ID, got.ID)
		assert.Equal(t, r.ContentHash, got.ContentHash)
		assert.Equal(t, 4, got.AssetCount)
		assert.Equal(t, "Article", got.Title)
		assert.Equal(t, "https://example.com/article", got.SourceURL)
		assert.True(t, got.CreatedAt.Equal(r.CreatedAt))
	})
}
