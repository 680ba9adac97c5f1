package main

import (
	"fmt"
	"io"

	"quill/internal/driver"
	"quill/internal/observ"
)

// printDirTimings prints the phases of all templates summed by name.
func printDirTimings(w io.Writer, results []driver.TokenizeDirResult) {
	var total observ.Report
	cached := 0
	for _, r := range results {
		if r.Timing != nil {
			total.Merge(*r.Timing)
		}
		if r.Cached {
			cached++
		}
	}
	fmt.Fprintf(w, "timings over %d templates (%d from cache):\n", len(results), cached)
	for _, p := range total.Phases {
		fmt.Fprintf(w, "  %-20s %7.2f ms\n", p.Name, p.DurationMS)
	}
	fmt.Fprintf(w, "  %-20s %7.2f ms\n", "total", total.TotalMS)
}
