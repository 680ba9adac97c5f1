package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/prof"
)

// setupProfiling inspects persistent profiling flags and enables the
// corresponding profilers. It returns a cleanup function that is safe to call
// multiple times.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	var cfg prof.Config
	var err error
	if cfg.CPU, err = root.PersistentFlags().GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.Mem, err = root.PersistentFlags().GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.Trace, err = root.PersistentFlags().GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return func() {}, nil
	}

	session, err := prof.Start(cfg)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profiling: %v\n", err)
		}
	}, nil
}
