package clipsave

// Converter converts a clipped HTML page to Markdown.
type Converter interface {
	// Convert transforms HTML into Markdown. Relative links and image
	// sources are resolved against baseURL when it is not empty.
	Convert(html, baseURL string) (string, error)
}
