package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/diag"
	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/source"
)

type commonFlags struct {
	quiet          bool
	timings        bool
	maxDiagnostics int
	pathMode       diagfmt.PathMode
}

func readCommonFlags(cmd *cobra.Command) (commonFlags, error) {
	var (
		cf  commonFlags
		err error
	)
	flags := cmd.Root().PersistentFlags()
	if cf.quiet, err = flags.GetBool("quiet"); err != nil {
		return cf, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if cf.timings, err = flags.GetBool("timings"); err != nil {
		return cf, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if cf.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return cf, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	mode, err := flags.GetString("path-mode")
	if err != nil {
		return cf, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if cf.pathMode, ok = diagfmt.ParsePathMode(mode); !ok {
		return cf, fmt.Errorf("invalid --path-mode value %q", mode)
	}
	return cf, nil
}

// printDiagnostics writes bag to stderr. In quiet mode only errors survive,
// one line each.
func printDiagnostics(cmd *cobra.Command, cf commonFlags, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	if cf.quiet {
		bag = onlyErrors(bag)
		if bag.Len() == 0 {
			return nil
		}
		fmt.Fprintln(cmd.ErrOrStderr(), diag.FormatShort(bag.Items(), fs, false))
		return nil
	}
	colored, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	bag.Sort()
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{
		Color:      colored,
		PathMode:   cf.pathMode,
		ShowNotes:  true,
		ShowSource: true,
	})
	return nil
}

func onlyErrors(bag *diag.Bag) *diag.Bag {
	out := diag.NewBag(bag.Cap())
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			out.Add(d)
		}
	}
	return out
}

func errorCount(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			n++
		}
	}
	return n
}

// printDirSummary prints one line per template.
func printDirSummary(w io.Writer, fs *source.FileSet, cf commonFlags, results []driver.TokenizeDirResult) {
	for _, r := range results {
		path := r.Path
		if r.Loaded {
			path = fs.DisplayPath(r.FileID)
		}
		warnings := 0
		for _, d := range r.Bag.Items() {
			if d.Severity == diag.SevWarning {
				warnings++
			}
		}
		line := fmt.Sprintf("%s: %d tokens, %d errors, %d warnings", path, len(r.Results), errorCount(r.Bag), warnings)
		if r.Cached {
			line += " (cached)"
		}
		if cf.quiet && errorCount(r.Bag) == 0 {
			continue
		}
		fmt.Fprintln(w, line)
	}
}
