package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// useColor resolves --color for output going to f and aligns fatih/color's
// global switch with it.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	var on bool
	switch strings.ToLower(value) {
	case "on", "always":
		on = true
	case "off", "never":
		on = false
	case "", "auto":
		on = isTerminal(f)
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	color.NoColor = !on
	return on, nil
}
