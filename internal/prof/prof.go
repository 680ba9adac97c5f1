// Package prof collects Go runtime profiles of a quill run: CPU samples, a
// heap snapshot taken at the end, and a runtime execution trace.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Config names the output files. Empty paths disable the profiler.
type Config struct {
	CPU   string
	Mem   string
	Trace string
}

// Enabled reports whether any profiler is requested.
func (c Config) Enabled() bool {
	return c.CPU != "" || c.Mem != "" || c.Trace != ""
}

// Session owns the running profilers. Stop is safe to call more than once.
type Session struct {
	cfg       Config
	cpuFile   *os.File
	traceFile *os.File
	stopped   bool
}

// Start enables the profilers named by cfg. On error nothing is left running.
func Start(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}
	if cfg.CPU != "" {
		f, err := os.Create(cfg.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if cfg.Trace != "" {
		f, err := os.Create(cfg.Trace)
		if err == nil {
			if err = trace.Start(f); err != nil {
				_ = f.Close()
			}
		}
		if err != nil {
			// cpu профиль не должен пережить ошибку
			_ = s.Stop()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop ends the trace and CPU profile, then writes the heap profile.
func (s *Session) Stop() error {
	if s == nil || s.stopped {
		return nil
	}
	s.stopped = true

	var errs []error
	if s.traceFile != nil {
		trace.Stop()
		errs = append(errs, s.traceFile.Close())
	}
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		errs = append(errs, s.cpuFile.Close())
	}
	if s.cfg.Mem != "" {
		errs = append(errs, writeMem(s.cfg.Mem))
	}
	return errors.Join(errs...)
}

func writeMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	return nil
}
