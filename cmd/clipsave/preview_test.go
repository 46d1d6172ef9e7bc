package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/asset"
	main "github.com/fwojciec/clipsave/cmd/clipsave"
	"github.com/fwojciec/clipsave/htmltomarkdown"
	"github.com/fwojciec/clipsave/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("extracts the article before planning assets", func(t *testing.T) {
		t.Parallel()

		file := writeFile(t, t.TempDir(), "page.html", "<html><nav>menu</nav><article>...</article></html>")
		var gotURL string
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Extractor: &mock.Extractor{ExtractFn: func(_, pageURL string) (*clipsave.ExtractResult, error) {
				gotURL = pageURL
				return &clipsave.ExtractResult{
					Title:       "Tide Pools",
					ContentHTML: `<p>Low tide.</p><img src="/photos/urchins.jpg" alt="Urchins">`,
				}, nil
			}},
			Converter: htmltomarkdown.NewConverter(),
			Assets:    asset.NewService(nil),
		}

		cmd := &main.PreviewCmd{File: file, Name: "coast/tide-pools", SourceURL: "https://blog.example.com/tide-pools"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "https://blog.example.com/tide-pools", gotURL)
		output := stdout.String()
		assert.Contains(t, output, "Document: coast/tide-pools.md")
		assert.Contains(t, output, "Title: Tide Pools")
		assert.Contains(t, output, "https://blog.example.com/photos/urchins.jpg -> coast/assets/img_0.jpg")
		assert.Contains(t, output, "![Urchins](./assets/img_0.jpg)")
		assert.NotContains(t, output, "menu")
	})

	t.Run("reports extraction failure", func(t *testing.T) {
		t.Parallel()

		file := writeFile(t, t.TempDir(), "page.html", "<html></html>")
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Extractor: &mock.Extractor{ExtractFn: func(string, string) (*clipsave.ExtractResult, error) {
				return nil, clipsave.Errorf(clipsave.EINVALID, "no article found")
			}},
			Converter: htmltomarkdown.NewConverter(),
			Assets:    asset.NewService(nil),
		}

		err := (&main.PreviewCmd{File: file}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "no article found")
	})
}
