package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/clipsave/cmd/clipsave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestMain(t *testing.T) (*main.Main, string) {
	t.Helper()
	dir := t.TempDir()
	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "history.db")
	m.DownloadDir = filepath.Join(dir, "downloads")
	return m, dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("saves markdown and its images locally", func(t *testing.T) {
		t.Parallel()

		srv := imageServer(t)
		m, dir := newTestMain(t)
		file := writeFile(t, dir, "article.md", "# Article\n\n![photo]("+srv.URL+"/photo.png)\n\n![gone]("+srv.URL+"/gone.png)\n")
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"save", file, "--name", "notes/2024/article"}, stdout, stderr)
		require.NoError(t, err, stderr.String())

		doc, err := os.ReadFile(filepath.Join(dir, "downloads", "notes", "2024", "article.md"))
		require.NoError(t, err)
		assert.Contains(t, string(doc), "![photo](./assets/img_0.png)")
		assert.Contains(t, string(doc), "![gone]("+srv.URL+"/gone.png)")

		img, err := os.ReadFile(filepath.Join(dir, "downloads", "notes", "2024", "assets", "img_0.png"))
		require.NoError(t, err)
		assert.Equal(t, "PNGDATA", string(img))

		assert.Contains(t, stdout.String(), "Saved ")
		assert.Contains(t, stdout.String(), "(2 files)")
		assert.Contains(t, stdout.String(), "1 images could not be saved")
	})

	t.Run("records saves in the history", func(t *testing.T) {
		t.Parallel()

		m, dir := newTestMain(t)
		file := writeFile(t, dir, "plain.md", "# Plain\n")

		require.NoError(t, m.Run(context.Background(), []string{"save", file}, &bytes.Buffer{}, &bytes.Buffer{}))

		// A second save of the same name keeps both files.
		require.NoError(t, m.Run(context.Background(), []string{"save", file}, &bytes.Buffer{}, &bytes.Buffer{}))
		_, err := os.Stat(filepath.Join(dir, "downloads", "plain (1).md"))
		require.NoError(t, err)

		stdout := &bytes.Buffer{}
		require.NoError(t, m.Run(context.Background(), []string{"history"}, stdout, &bytes.Buffer{}))
		assert.Contains(t, stdout.String(), "local")
		assert.Contains(t, stdout.String(), "plain.md")
		assert.Contains(t, stdout.String(), "plain (1).md")
	})

	t.Run("reports invalid webdav configuration", func(t *testing.T) {
		t.Parallel()

		m, dir := newTestMain(t)
		file := writeFile(t, dir, "doc.md", "# Doc\n")
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"save", file, "--strategy", "webdav"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "save failed (validation)")
		assert.Contains(t, stderr.String(), "webdav url required")

		stdout := &bytes.Buffer{}
		require.NoError(t, m.Run(context.Background(), []string{"history", "--failed"}, stdout, &bytes.Buffer{}))
		assert.Contains(t, stdout.String(), "failed:validation")
	})

	t.Run("reads defaults from config file", func(t *testing.T) {
		t.Parallel()

		m, dir := newTestMain(t)
		downloads := filepath.Join(dir, "elsewhere")
		cfg := writeFile(t, dir, "clipsave.yaml", "downloadDir: "+downloads+"\nsave:\n  localBasePath: Clips/web\n")
		file := writeFile(t, dir, "doc.md", "# Doc\n")

		err := m.Run(context.Background(), []string{"--config", cfg, "save", file}, &bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(downloads, "Clips", "web", "doc.md"))
		require.NoError(t, err)
	})

	t.Run("saves the article of an HTML page", func(t *testing.T) {
		t.Parallel()

		srv := imageServer(t)
		m, dir := newTestMain(t)
		page := `<html><head><title>Post | Site</title></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Post</h1><p>Body text.</p><img src="/photo.png" alt="photo"></article>
</body></html>`
		file := writeFile(t, dir, "post.html", page)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"save", file, "--extract", "selector", "--url", srv.URL + "/posts/post"}, stdout, stderr)
		require.NoError(t, err, stderr.String())

		doc, err := os.ReadFile(filepath.Join(dir, "downloads", "post.md"))
		require.NoError(t, err)
		assert.Contains(t, string(doc), "Body text.")
		assert.Contains(t, string(doc), "![photo](./assets/img_0.png)")
		assert.NotContains(t, string(doc), "Home")

		img, err := os.ReadFile(filepath.Join(dir, "downloads", "assets", "img_0.png"))
		require.NoError(t, err)
		assert.Equal(t, "PNGDATA", string(img))
	})

	t.Run("previews without fetching", func(t *testing.T) {
		t.Parallel()

		m, dir := newTestMain(t)
		file := writeFile(t, dir, "doc.md", "![a](https://img.example.com/pic.jpg)\n")
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"preview", file, "--name", "notes/doc"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)

		assert.Contains(t, stdout.String(), "Document: notes/doc.md")
		assert.Contains(t, stdout.String(), "https://img.example.com/pic.jpg -> notes/assets/img_0.jpg")
		assert.Contains(t, stdout.String(), "![a](./assets/img_0.jpg)")
		_, err = os.Stat(m.DBPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("returns error without command", func(t *testing.T) {
		t.Parallel()

		m, _ := newTestMain(t)

		err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Error(t, err)
	})

	t.Run("shows help", func(t *testing.T) {
		t.Parallel()

		m, _ := newTestMain(t)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "save")
		assert.Contains(t, stdout.String(), "history")
	})
}
