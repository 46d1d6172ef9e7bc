package mock

import "github.com/fwojciec/clipsave"

var _ clipsave.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of clipsave.Extractor.
type Extractor struct {
	ExtractFn func(rawHTML, pageURL string) (*clipsave.ExtractResult, error)
}

func (e *Extractor) Extract(rawHTML, pageURL string) (*clipsave.ExtractResult, error) {
	return e.ExtractFn(rawHTML, pageURL)
}
