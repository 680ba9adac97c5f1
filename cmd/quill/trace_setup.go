package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/trace"
)

var cleanups []func()

// startObservability enables profiling and tracing for the command about to run.
func startObservability(cmd *cobra.Command, _ []string) error {
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		stopProf()
		return err
	}
	// трассировку закрываем раньше профилей
	cleanups = append(cleanups, stopTrace, stopProf)
	return nil
}

func stopObservability(*cobra.Command, []string) {
	for _, fn := range cleanups {
		fn()
	}
	cleanups = nil
}

// setupTracing inspects trace-related flags and initializes the tracer.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	cleanup := func() {
		// в ring-режиме события выгружаются только в конце
		if ring, ok := tracer.(*trace.RingTracer); ok {
			if err := ring.Dump(os.Stderr, format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
