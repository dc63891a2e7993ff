package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/paiml/decy-sub003/internal/driver"
	"github.com/paiml/decy-sub003/internal/hir"
	"github.com/paiml/decy-sub003/internal/report"
	"github.com/paiml/decy-sub003/internal/ui"
)

type batchOutcome struct {
	summaries []report.Summary
	err       error
}

func runBatchWithUI(ctx context.Context, fns []*hir.Func, opts driver.Options) ([]report.Summary, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		summaries, err := driver.Batch(ctx, fns, optsCopy)
		outcomeCh <- batchOutcome{summaries: summaries, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("analyzing", funcNames(fns), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the view may quit before the batch finishes; keep the pipeline from
	// blocking on a full channel
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.summaries, uiErr
	}
	return outcome.summaries, outcome.err
}
