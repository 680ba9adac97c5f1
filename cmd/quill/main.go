package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"quill/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Template tokenizer",
	Long: `quill splits templates into directives, blocks, scripts and literal text
and reports the input it could not recognize`,
	SilenceUsage:      true,
	PersistentPreRunE: startObservability,
	PersistentPostRun: stopObservability,
}

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "only report errors")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per template")
	rootCmd.PersistentFlags().String("config", "", "path to quill.toml or quill.yaml (default: discovered upward)")
	rootCmd.PersistentFlags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept in ring mode")

	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

// main executes the root command. Any command error exits with status 1.
func main() {
	err := rootCmd.Execute()
	// PersistentPostRun не вызывается, если команда вернула ошибку
	stopObservability(nil, nil)
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
