// Package goquery isolates article content with CSS selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/clipsave"
)

var _ clipsave.Extractor = (*Extractor)(nil)

// Content selectors in the order they are tried. The first one that matches
// an element with text wins; otherwise the whole body is used.
var contentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".content",
	".post-content",
	".entry-content",
}

// Chrome removed from the chosen content before rendering.
const chromeSelectors = `script, style, noscript, nav, aside, footer, form, iframe, ` +
	`[role="navigation"], .sidebar, .toc, .table-of-contents, .comments, .share`

// Extractor picks the main content element of a page using semantic
// selectors. It is the cheapest extractor and works well on pages that mark
// up their article properly.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the content element of rawHTML with image and link
// references resolved against pageURL.
func (e *Extractor) Extract(rawHTML, pageURL string) (*clipsave.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, clipsave.Errorf(clipsave.EINVALID, "empty HTML")
	}

	var base *url.URL
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, clipsave.Errorf(clipsave.EINVALID, "invalid page URL: %v", err)
		}
		base = u
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, clipsave.Errorf(clipsave.EINVALID, "failed to parse HTML: %v", err)
	}

	content := selectContent(doc)
	content.Find(chromeSelectors).Remove()

	if base != nil {
		resolveAttr(content, "img[src]", "src", base)
		resolveAttr(content, "a[href]", "href", base)
	}

	html, err := content.Html()
	if err != nil {
		return nil, clipsave.Errorf(clipsave.EINTERNAL, "failed to render content: %v", err)
	}

	return &clipsave.ExtractResult{
		Title:       titleOf(doc, content),
		ContentHTML: strings.TrimSpace(html),
	}, nil
}

func selectContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && strings.TrimSpace(sel.Text()) != "" {
			return sel
		}
	}
	return doc.Find("body").First()
}

// titleOf prefers the first heading of the content over the document title,
// which usually carries the site name as well.
func titleOf(doc *goquery.Document, content *goquery.Selection) string {
	if h1 := strings.TrimSpace(content.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("head title").First().Text())
}

func resolveAttr(sel *goquery.Selection, selector, attr string, base *url.URL) {
	sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr(attr)
		if value == "" || isNonHTTPLink(value) {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(value))
		if err != nil {
			return
		}
		s.SetAttr(attr, base.ResolveReference(ref).String())
	})
}

// isNonHTTPLink reports whether href uses a scheme that must not be resolved.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#")
}
