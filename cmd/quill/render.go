package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/assemble"
	"quill/internal/driver"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] <template>",
	Short: "Show a template after whitespace handling",
	Long: `Render feeds the token stream to the assembler, which applies the formatting
hints to literal text. Directives, blocks and scripts are printed as
{{Kind payload}} placeholders; comments and sensors disappear`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().Bool("text", false, "print only the literal text")
	renderCmd.Flags().Bool("stats", false, "print how many bytes the formatting hints removed")
	addFeatureFlags(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]
	cf, err := readCommonFlags(cmd)
	if err != nil {
		return err
	}
	textOnly, err := cmd.Flags().GetBool("text")
	if err != nil {
		return err
	}
	stats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	result, err := driver.Tokenize(cmd.Context(), path, driver.Options{
		Config:         cfg,
		MaxDiagnostics: cf.maxDiagnostics,
		Timings:        cf.timings,
	})
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	if err := printDiagnostics(cmd, cf, result.Bag, result.FileSet); err != nil {
		return err
	}
	if result.Err != nil {
		return result.Err
	}

	var b assemble.Builder
	for _, res := range result.Results {
		b.Add(res)
	}

	out := cmd.OutOrStdout()
	if textOnly {
		fmt.Fprint(out, b.Text())
	} else {
		fmt.Fprint(out, b.Render())
	}
	if stats {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d parts, %d bytes trimmed\n", len(b.Parts()), b.Trimmed())
	}
	if result.Bag.HasErrors() {
		return errors.New("tokenization produced errors")
	}
	return nil
}
