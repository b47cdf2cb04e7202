// Package detector chooses between the interactive and the linear progress
// renderer.
package detector

import (
	"io"
	"os"

	"go.trai.ch/hob/internal/ui/output"
)

// EnvOutput selects the output mode: auto, tui, or linear (alias ci).
const EnvOutput = "HOB_OUTPUT"

// OutputMode represents the rendering mode for the application.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTUI forces the interactive TUI renderer.
	ModeTUI
	// ModeLinear forces the linear CI renderer.
	ModeLinear
)

func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended output mode. Progress is drawn
// on w, so the TUI is only chosen when w is a terminal and CI is not set.
func DetectEnvironment(w io.Writer, getenv func(string) string) OutputMode {
	ci := getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !output.IsTerminal(w) || isCI {
		return ModeLinear
	}
	return ModeTUI
}

// ResolveMode applies the user's choice to auto-detection.
// userFlag should be one of: "auto", "tui", "linear", "ci", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "tui":
		return ModeTUI
	case "linear", "ci":
		return ModeLinear
	default:
		return autoDetected
	}
}

// Mode resolves the output mode for the process streams.
func Mode() OutputMode {
	return ResolveMode(DetectEnvironment(os.Stderr, os.Getenv), os.Getenv(EnvOutput))
}
