package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/clipsave"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := clipsave.HistoryFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Strategy != "" {
		filter.Strategy = &c.Strategy
	}
	if c.Failed {
		succeeded := false
		filter.Succeeded = &succeeded
	}

	records, err := deps.History.FindRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipsave.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No saves recorded yet. Use 'clipsave save' to save a clipping.")
		return nil
	}

	for _, r := range records {
		status := "ok"
		if !r.Succeeded {
			status = "failed:" + string(r.FailureKind)
		}
		fmt.Fprintf(deps.Stdout, "%s  %-7s  %-14s  %s\n", r.CreatedAt.Local().Format(time.DateTime), r.Strategy, status, r.DestinationPath)
		if !r.Succeeded && r.FailureReason != "" {
			fmt.Fprintf(deps.Stdout, "    %s\n", r.FailureReason)
		}
	}
	return nil
}
