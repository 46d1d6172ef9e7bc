package goquery_test

import (
	"testing"

	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("picks the article and drops page chrome", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Tide Pools | Coast Notes</title></head>
<body>
<nav><a href="/">Home</a><a href="/archive">Archive</a></nav>
<article>
	<h1>Tide Pools</h1>
	<p>Low tide leaves small worlds behind.</p>
	<aside class="share">Share this</aside>
	<img src="/photos/urchins.jpg" alt="Urchins">
	<a href="../reading">Further reading</a>
	<a href="#top">Back to top</a>
</article>
<footer>Copyright</footer>
</body>
</html>`

		res, err := goquery.NewExtractor().Extract(html, "https://blog.example.com/posts/tide-pools")

		require.NoError(t, err)
		assert.Equal(t, "Tide Pools", res.Title)
		assert.Contains(t, res.ContentHTML, "Low tide leaves small worlds behind.")
		assert.Contains(t, res.ContentHTML, `src="https://blog.example.com/photos/urchins.jpg"`)
		assert.Contains(t, res.ContentHTML, `href="https://blog.example.com/reading"`)
		assert.Contains(t, res.ContentHTML, `href="#top"`)
		assert.NotContains(t, res.ContentHTML, "Archive")
		assert.NotContains(t, res.ContentHTML, "Share this")
		assert.NotContains(t, res.ContentHTML, "Copyright")
	})

	t.Run("falls back to main then body", func(t *testing.T) {
		t.Parallel()

		res, err := goquery.NewExtractor().Extract(`<html><body><main><p>Main text</p></main></body></html>`, "")
		require.NoError(t, err)
		assert.Equal(t, "<p>Main text</p>", res.ContentHTML)

		res, err = goquery.NewExtractor().Extract(`<html><body><p>Body text</p><script>x()</script></body></html>`, "")
		require.NoError(t, err)
		assert.Equal(t, "<p>Body text</p>", res.ContentHTML)
	})

	t.Run("skips an empty article", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><article> </article><main><p>Real content</p></main></body></html>`

		res, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		assert.Equal(t, "<p>Real content</p>", res.ContentHTML)
	})

	t.Run("uses the document title without a heading", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title> Field Guide </title></head><body><article><p>Kelp</p></article></body></html>`

		res, err := goquery.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		assert.Equal(t, "Field Guide", res.Title)
	})

	t.Run("leaves data images alone", func(t *testing.T) {
		t.Parallel()

		html := `<article><img src="data:image/png;base64,AAAA"></article>`

		res, err := goquery.NewExtractor().Extract(html, "https://example.com/")

		require.NoError(t, err)
		assert.Contains(t, res.ContentHTML, `src="data:image/png;base64,AAAA"`)
	})

	t.Run("rejects empty HTML", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NewExtractor().Extract("  ", "")

		assert.Equal(t, clipsave.EINVALID, clipsave.ErrorCode(err))
	})
}
