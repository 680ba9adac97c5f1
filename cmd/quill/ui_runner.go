package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"quill/internal/driver"
	"quill/internal/source"
	"quill/internal/ui"
)

type dirOutcome struct {
	fs      *source.FileSet
	results []driver.TokenizeDirResult
	err     error
}

// runTokenizeDirWithUI runs TokenizeDir in the background and renders its
// progress events until the run finishes.
func runTokenizeDirWithUI(ctx context.Context, dir string, opts driver.Options) (*source.FileSet, []driver.TokenizeDirResult, error) {
	exts := opts.Exts
	if len(exts) == 0 {
		exts = driver.DefaultExts
	}
	files, err := driver.ListTemplates(dir, exts)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan dirOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.TokenizeDir(ctx, dir, optsCopy)
		outcomeCh <- dirOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("tokenize "+dir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// UI больше не читает канал, не даём воркерам зависнуть
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
