// Package rustfmt resolves and runs the external rustfmt binary with an
// edition fallback: a rejected first attempt is retried once under the older
// edition, and the result is best-effort either way.
package rustfmt

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// BinaryEnvironmentVariable overrides the rustfmt binary path. An empty
	// value forces "no formatter available".
	BinaryEnvironmentVariable = "RUSTFMT"

	binaryName              = "rustfmt"
	rustupBinaryName        = "rustup"
	rustupWhichSubcommand   = "which"
	rustupToolchainFlag     = "--toolchain"
	nightlyToolchainName    = "nightly"
	edition2018Argument     = "--edition=2018"
	edition2015Argument     = "--edition=2015"
	configurationFileName   = "rustfmt.toml"
	configurationFileMode   = 0o644
	// configurationFileContent pins the formatter settings so an unrelated
	// project-local rustfmt.toml is never picked up for the scratch file.
	configurationFileContent = "normalize_doc_attributes = true\nreorder_imports = false\n"
)

// ResolveBinary locates the rustfmt binary. The RUSTFMT variable wins when
// set; setting it to an empty string disables formatting entirely. Otherwise
// the nightly toolchain component is preferred over whatever is on PATH.
func ResolveBinary() (string, bool) {
	if value, set := os.LookupEnv(BinaryEnvironmentVariable); set {
		if value == "" {
			return "", false
		}
		return value, true
	}
	if componentPath, componentError := nightlyComponentPath(); componentError == nil && componentPath != "" {
		return componentPath, true
	}
	lookupPath, lookupError := exec.LookPath(binaryName)
	if lookupError != nil {
		return "", false
	}
	return lookupPath, true
}

func nightlyComponentPath() (string, error) {
	whichCommand := exec.Command(rustupBinaryName, rustupWhichSubcommand, rustupToolchainFlag, nightlyToolchainName, binaryName)
	whichOutput, whichError := whichCommand.Output()
	if whichError != nil {
		return "", whichError
	}
	componentPath := strings.TrimSpace(string(whichOutput))
	if _, statError := os.Stat(componentPath); statError != nil {
		return "", statError
	}
	return componentPath, nil
}

// WriteConfiguration writes the companion rustfmt.toml into the scratch
// directory before any formatter invocation.
func WriteConfiguration(scratchDirectory string) error {
	configurationPath := filepath.Join(scratchDirectory, configurationFileName)
	return os.WriteFile(configurationPath, []byte(configurationFileContent), configurationFileMode)
}

// Formatter invokes one rustfmt binary on files in place.
type Formatter struct {
	binaryPath string
	run        func(binaryPath string, arguments ...string) error
}

// NewFormatter constructs a Formatter for the resolved binary path.
func NewFormatter(binaryPath string) *Formatter {
	return &Formatter{
		binaryPath: binaryPath,
		run:        runFormatterCommand,
	}
}

func runFormatterCommand(binaryPath string, arguments ...string) error {
	// #nosec G204
	formatterCommand := exec.Command(binaryPath, arguments...)
	// The first attempt's diagnostics are most likely an edition mismatch,
	// not a real error, so the formatter's stderr is discarded outright.
	return formatterCommand.Run()
}

// Format rewrites the file in place, asking for the 2018 edition first and
// retrying exactly once under the 2015 edition when the first attempt ran and
// exited non-zero. A spawn failure is not an edition mismatch and is never
// retried. Both attempts failing is not an error: the caller reads the file
// back and shows whatever content it holds.
func (formatter *Formatter) Format(filePath string) {
	firstAttemptError := formatter.run(formatter.binaryPath, edition2018Argument, filePath)
	var exitError *exec.ExitError
	if errors.As(firstAttemptError, &exitError) {
		_ = formatter.run(formatter.binaryPath, edition2015Argument, filePath)
	}
}
