// Package readability isolates article content with go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/clipsave"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements clipsave.Extractor at compile time.
var _ clipsave.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the article. Relative image
// sources are made absolute against pageURL.
func (e *Extractor) Extract(rawHTML, pageURL string) (*clipsave.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, clipsave.Errorf(clipsave.EINVALID, "empty HTML input")
	}

	var base *url.URL
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, clipsave.Errorf(clipsave.EINVALID, "invalid page URL %q", pageURL)
		}
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return nil, err
	}

	return &clipsave.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
