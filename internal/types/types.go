// Package types defines every cross-package data structure used by the cargo-expand CLI.
package types

import "fmt"

// Coloring selects when colored output is produced.
type Coloring string

const (
	// ColoringAuto colors output only when the destination is a terminal.
	ColoringAuto Coloring = "auto"
	// ColoringAlways forces colored output.
	ColoringAlways Coloring = "always"
	// ColoringNever disables colored output.
	ColoringNever Coloring = "never"
)

const invalidColoringMessageFormat = "invalid color value '%s': must be auto, always or never"

// ParseColoring converts a user supplied color value into a Coloring.
func ParseColoring(value string) (Coloring, error) {
	switch Coloring(value) {
	case ColoringAuto, ColoringAlways, ColoringNever:
		return Coloring(value), nil
	default:
		return ColoringAuto, fmt.Errorf(invalidColoringMessageFormat, value)
	}
}

// Options captures one invocation of the expand pipeline. It is populated
// once from the command line and treated as read-only afterwards.
type Options struct {
	Tests             bool
	Lib               bool
	Bin               string
	Example           string
	Test              string
	Bench             string
	Features          string
	AllFeatures       bool
	NoDefaultFeatures bool
	Release           bool
	Target            string
	TargetDirectory   string
	ManifestPath      string
	Package           string
	Jobs              int
	Verbose           bool
	Frozen            bool
	Locked            bool
	UnstableFlags     []string
	Color             Coloring
	ColorSet          bool
	Theme             string
	ListThemes        bool
	Ugly              bool
	Item              *Selector
	CountTokens       bool
	TokenizerModel    string
	CopyToClipboard   bool
}

// ExitCodeError carries a process exit code through the error chain so the
// entry point can terminate with the code of a failed pipeline stage.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError wraps an exit code in an error value.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

// Error describes the carried exit code.
func (exitCodeError *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", exitCodeError.Code)
}
