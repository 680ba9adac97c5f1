package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <template|dir>",
	Short: "Tokenize a template or every template in a directory",
	Long: `Tokenize runs the sub-parser chain over a template and prints every token
with its formatting hint and the sub-parser that produced it`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().Bool("strict", false, "verify that declining sub-parsers leave no trace")
	tokenizeCmd.Flags().Int("jobs", 0, "parallel jobs for directories (0 = GOMAXPROCS)")
	tokenizeCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	tokenizeCmd.Flags().Bool("cache", false, "reuse token streams from the disk cache")
	tokenizeCmd.Flags().Bool("cache-clear", false, "drop the disk cache before running")
	tokenizeCmd.Flags().Bool("summary", false, "print one line per template instead of tokens")
	tokenizeCmd.Flags().StringSlice("ext", driver.DefaultExts, "template extensions picked up in directories")
	addFeatureFlags(tokenizeCmd)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	target := args[0]

	cf, err := readCommonFlags(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	opts, err := driverOptions(cmd, target, cf)
	if err != nil {
		return err
	}

	st, err := os.Stat(target)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return tokenizeDir(cmd, target, format, cf, opts)
	}
	return tokenizeOne(cmd, target, format, cf, opts)
}

func driverOptions(cmd *cobra.Command, target string, cf commonFlags) (driver.Options, error) {
	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{
		Config:         cfg,
		MaxDiagnostics: cf.maxDiagnostics,
		Timings:        cf.timings,
	}
	if opts.Strict, err = cmd.Flags().GetBool("strict"); err != nil {
		return opts, err
	}
	if opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return opts, err
	}
	if opts.Exts, err = cmd.Flags().GetStringSlice("ext"); err != nil {
		return opts, err
	}
	for i, ext := range opts.Exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		opts.Exts[i] = ext
	}

	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return opts, err
	}
	clearCache, err := cmd.Flags().GetBool("cache-clear")
	if err != nil {
		return opts, err
	}
	if useCache || clearCache {
		cache, err := driver.OpenDiskCache("quill")
		if err != nil {
			return opts, fmt.Errorf("failed to open cache: %w", err)
		}
		if clearCache {
			if err := cache.DropAll(); err != nil {
				return opts, fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		if useCache {
			opts.Cache = cache
		}
	}
	return opts, nil
}

func tokenizeOne(cmd *cobra.Command, path, format string, cf commonFlags, opts driver.Options) error {
	result, err := driver.Tokenize(cmd.Context(), path, opts)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	if err := printDiagnostics(cmd, cf, result.Bag, result.FileSet); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = diagfmt.FormatTokensJSON(out, result.Results, result.FileSet)
	default:
		colored, cerr := useColor(cmd, os.Stdout)
		if cerr != nil {
			return cerr
		}
		err = diagfmt.FormatTokensPretty(out, result.Results, result.FileSet, diagfmt.PrettyOpts{Color: colored, PathMode: cf.pathMode})
	}
	if err != nil {
		return err
	}
	if result.Err != nil {
		return result.Err
	}
	if result.Bag.HasErrors() {
		return errors.New("tokenization produced errors")
	}
	return nil
}

type dirFileJSON struct {
	Path        string                    `json:"path"`
	Cached      bool                      `json:"cached,omitempty"`
	Tokens      []diagfmt.TokenOutput     `json:"tokens"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

func tokenizeDir(cmd *cobra.Command, dir, format string, cf commonFlags, opts driver.Options) error {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	summary, err := cmd.Flags().GetBool("summary")
	if err != nil {
		return err
	}

	var (
		fs      *source.FileSet
		results []driver.TokenizeDirResult
	)
	if shouldUseTUI(mode) {
		fs, results, err = runTokenizeDirWithUI(cmd.Context(), dir, opts)
	} else {
		fs, results, err = driver.TokenizeDir(cmd.Context(), dir, opts)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("tokenization failed: %w", err)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.Err != nil || r.Bag.HasErrors() {
			failed++
		}
	}

	switch {
	case format == "json":
		payload := make([]dirFileJSON, 0, len(results))
		for _, r := range results {
			entry := dirFileJSON{
				Path:   r.Path,
				Cached: r.Cached,
				Diagnostics: diagfmt.BuildDiagnosticsOutput(r.Bag, fs, diagfmt.JSONOpts{
					IncludePositions: r.Loaded,
					PathMode:         cf.pathMode,
					IncludeNotes:     true,
				}),
			}
			if r.Loaded {
				entry.Tokens = diagfmt.BuildTokensOutput(r.Results, fs)
			}
			payload = append(payload, entry)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
	case summary:
		printDirSummary(out, fs, cf, results)
		for _, r := range results {
			if err := printDiagnostics(cmd, cf, r.Bag, fs); err != nil {
				return err
			}
		}
	default:
		colored, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		for _, r := range results {
			if err := printDiagnostics(cmd, cf, r.Bag, fs); err != nil {
				return err
			}
			if !r.Loaded {
				continue
			}
			fmt.Fprintf(out, "== %s ==\n", fs.DisplayPath(r.FileID))
			if err := diagfmt.FormatTokensPretty(out, r.Results, fs, diagfmt.PrettyOpts{Color: colored, PathMode: cf.pathMode}); err != nil {
				return err
			}
		}
	}

	if cf.timings && !cf.quiet {
		printDirTimings(cmd.ErrOrStderr(), results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d templates failed", failed, len(results))
	}
	return nil
}
