package main

import (
	"fmt"

	"github.com/fwojciec/clipsave"
)

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	in, err := readInput(c.File, c.SourceURL, deps.Extractor, deps.Converter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipsave.ErrorMessage(err))
		return err
	}

	name := destinationName(c.Name, c.File)
	bundle := deps.Assets.Prepare(in.Content, name, firstNonEmpty(c.AssetsDir, deps.config().AssetsDir))

	fmt.Fprintf(deps.Stdout, "Document: %s.md\n", clipsave.SanitizeGeneratedPath(name))
	if in.Title != "" {
		fmt.Fprintf(deps.Stdout, "Title: %s\n", in.Title)
	}
	if len(bundle.Tasks) == 0 {
		fmt.Fprintln(deps.Stdout, "No remote images found.")
	}
	for _, task := range bundle.Tasks {
		fmt.Fprintf(deps.Stdout, "  %s -> %s\n", task.OriginalLocator, task.RemotePath)
	}
	fmt.Fprintln(deps.Stdout)
	fmt.Fprint(deps.Stdout, bundle.Content)
	return nil
}
