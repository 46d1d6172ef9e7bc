package clipsave

// ExtractResult holds the article found in a clipped HTML page.
type ExtractResult struct {
	Title string

	// ContentHTML is the article body with navigation, sidebars and
	// footers removed. Images are kept.
	ContentHTML string
}

// Extractor isolates the main article of an HTML page.
type Extractor interface {
	// Extract returns the article of rawHTML. pageURL, if not empty, is
	// used to resolve relative links and image sources.
	Extract(rawHTML, pageURL string) (*ExtractResult, error)
}
