package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/clipsave"
	"github.com/fwojciec/clipsave/strategy"
)

// Run executes the save command.
func (c *SaveCmd) Run(deps *Dependencies) error {
	cfg := deps.config()

	in, err := readInput(c.File, c.SourceURL, deps.Extractor, deps.Converter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipsave.ErrorMessage(err))
		return err
	}

	name := destinationName(c.Name, c.File)
	assetsDir := firstNonEmpty(c.AssetsDir, cfg.AssetsDir)
	bundle := deps.Assets.Prepare(in.Content, name, assetsDir)

	sc := &clipsave.SaveContext{
		Content:         bundle.Content,
		DestinationName: name,
		Assets:          bundle.Tasks,
		AssetsDirName:   assetsDir,
		Title:           firstNonEmpty(c.Title, in.Title),
		SourceURL:       c.SourceURL,
		Timestamp:       time.Now(),
		Config:          c.saveConfig(cfg),
	}
	strategyName := firstNonEmpty(c.Strategy, cfg.Strategy, strategy.LocalName)

	result := deps.Dispatcher.Dispatch(deps.Ctx, sc, strategyName)

	if deps.History != nil {
		record := clipsave.NewHistoryRecord(sc, strategyName, result)
		if err := deps.History.CreateRecord(deps.Ctx, record, firstNonEmpty(result.Content, sc.Content)); err != nil {
			deps.logger().Warn("history not recorded", "err", err)
		}
	}

	if !result.Succeeded {
		fmt.Fprintf(deps.Stderr, "error: save failed (%s): %s\n", result.FailureKind, result.FailureReason)
		return fmt.Errorf("save failed: %s", result.FailureReason)
	}

	fmt.Fprintf(deps.Stdout, "Saved %s (%d files)\n", result.DestinationPath, result.AssetCount)
	if result.Metrics != nil && result.Metrics.AssetsFailed > 0 {
		fmt.Fprintf(deps.Stdout, "%d images could not be saved and keep their original links\n", result.Metrics.AssetsFailed)
	}
	return nil
}
