package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/goquery"
	"github.com/fwojciec/clipsave/readability"
	"github.com/fwojciec/clipsave/trafilatura"
)

// input is a clipping read from disk.
type input struct {
	Content string
	// Title is set when an extractor found one.
	Title string
}

// readInput returns the Markdown content of file. HTML files are reduced to
// their article when ext is set, then converted with links resolved against
// sourceURL.
func readInput(file, sourceURL string, ext clipsave.Extractor, conv clipsave.Converter) (*input, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, clipsave.Errorf(clipsave.ENOTFOUND, "cannot read %s: %v", file, err)
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".html", ".htm":
	default:
		return &input{Content: string(data)}, nil
	}

	in := &input{}
	html := string(data)
	if ext != nil {
		res, err := ext.Extract(html, sourceURL)
		if err != nil {
			return nil, err
		}
		html, in.Title = res.ContentHTML, res.Title
	}

	in.Content, err = conv.Convert(html, sourceURL)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// newExtractor returns the extractor registered under name, or nil for
// "none".
func newExtractor(name string) clipsave.Extractor {
	switch name {
	case "selector":
		return goquery.NewExtractor()
	case "readability":
		return readability.NewExtractor()
	case "trafilatura":
		return trafilatura.NewExtractor()
	}
	return nil
}

// destinationName returns name, or the base name of file without its
// extension when name is empty.
func destinationName(name, file string) string {
	if name != "" {
		return name
	}
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
