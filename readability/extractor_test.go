package readability_test

import (
	"testing"

	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogPost = `<!DOCTYPE html>
<html>
<head><title>Tide Pools of the North Coast</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<aside class="sidebar"><p>Sidebar subscribe box</p></aside>
<article>
<h1>Tide Pools of the North Coast</h1>
<p>The low tide exposed a long shelf of basalt covered in anemones and purple urchins.</p>
<p><img src="/photos/urchins.jpg" alt="Urchins"></p>
<p>We counted sea stars along the edge of the shelf until the water came back in.</p>
</article>
<footer><p>Footer copyright text 2024</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor().Extract("  ", "")

		require.Error(t, err)
		assert.Equal(t, clipsave.EINVALID, clipsave.ErrorCode(err))
	})

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(blogPost, "")

		require.NoError(t, err)
		assert.Equal(t, "Tide Pools of the North Coast", result.Title)
	})

	t.Run("keeps the article and drops boilerplate", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(blogPost, "")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "long shelf of basalt")
		assert.Contains(t, result.ContentHTML, "counted sea stars")
		assert.NotContains(t, result.ContentHTML, "Home Nav Link")
		assert.NotContains(t, result.ContentHTML, "Footer copyright text")
	})

	t.Run("resolves image sources against the page URL", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(blogPost, "https://blog.example.com/2024/tide-pools")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "https://blog.example.com/photos/urchins.jpg")
	})
}
