package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"quill/internal/config"
)

// addFeatureFlags registers the flags that override [feature] of the config.
func addFeatureFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("smart-escape", false, "sense <script>/<style> blocks (overrides config)")
	cmd.Flags().Bool("natural", false, "recognize directives wrapped in <!-- --> (overrides config)")
}

// loadConfig reads --config, or discovers the config governing target, and
// applies the feature flags that were set explicitly.
func loadConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg *config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(startDir(target))
	}
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("smart-escape"); f != nil && f.Changed {
		if cfg.Features.SmartEscape, err = cmd.Flags().GetBool("smart-escape"); err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("natural"); f != nil && f.Changed {
		if cfg.Features.NaturalTemplate, err = cmd.Flags().GetBool("natural"); err != nil {
			return nil, err
		}
	}
	cfg.Features.HasTemplateLangs = cfg.Registry.HasTemplateLangs()
	return cfg, nil
}

func startDir(target string) string {
	if target == "" {
		return "."
	}
	if st, err := os.Stat(target); err == nil && st.IsDir() {
		return target
	}
	return filepath.Dir(target)
}
