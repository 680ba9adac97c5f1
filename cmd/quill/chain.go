package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/lexer"
)

var chainCmd = &cobra.Command{
	Use:   "chain [flags] [dir]",
	Short: "Print the sub-parser chain the configuration selects",
	Long: `Chain prints the ordered sub-parsers a tokenizer would try at every position,
as planned from the feature flags and the registered languages`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChain,
}

var chainFormat string

func init() {
	chainCmd.Flags().StringVar(&chainFormat, "format", "pretty", "output format (pretty|json)")
	addFeatureFlags(chainCmd)
}

type chainPayload struct {
	Config          string   `json:"config,omitempty"`
	SmartEscape     bool     `json:"smart_escape"`
	NaturalTemplate bool     `json:"natural_template"`
	Langs           []string `json:"langs"`
	Chain           []string `json:"chain"`
	Directives      []string `json:"directives"`
}

func runChain(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return err
	}

	payload := chainPayload{
		Config:          cfg.Path,
		SmartEscape:     cfg.Features.SmartEscape,
		NaturalTemplate: cfg.Features.NaturalTemplate,
	}
	for _, l := range cfg.Registry.Langs() {
		payload.Langs = append(payload.Langs, l.Name)
	}
	for _, stage := range lexer.Plan(cfg.Features) {
		payload.Chain = append(payload.Chain, stage.String())
	}
	for _, p := range lexer.NewDispatcher().Family() {
		payload.Directives = append(payload.Directives, p.Name())
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(chainFormat) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", chainFormat)
	}

	source := payload.Config
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(out, "config: %s\n", source)
	fmt.Fprintf(out, "smart_escape=%t natural_template=%t langs=[%s]\n",
		payload.SmartEscape, payload.NaturalTemplate, strings.Join(payload.Langs, ", "))
	for i, name := range payload.Chain {
		fmt.Fprintf(out, "%2d. %s", i+1, name)
		if name == lexer.StageDispatcher.String() {
			fmt.Fprintf(out, " (%s)", strings.Join(payload.Directives, ", "))
		}
		fmt.Fprintln(out)
	}
	return nil
}
