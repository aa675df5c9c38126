package toolchain

import (
	"os"
	"os/exec"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	// ReinvokeGuardEnvironmentVariable marks a child process that was already
	// re-invoked on the nightly toolchain so it never re-invokes again.
	ReinvokeGuardEnvironmentVariable = "CARGO_EXPAND_NO_RUN_NIGHTLY"

	// CargoBinaryEnvironmentVariable overrides the cargo binary path.
	CargoBinaryEnvironmentVariable = "CARGO"

	defaultCargoBinary = "cargo"

	// NightlyToolchainSelector is the rustup selector for the nightly toolchain.
	NightlyToolchainSelector = "+nightly"

	versionArgument        = "--version"
	versionReportProgram   = "cargo"
	nightlyVersionMarker   = "nightly"
	stableMajorVersion     = "v1"
	semanticVersionPrefix  = "v"
	prereleaseSeparator    = "-"
	buildMetadataSeparator = "+"
)

// CargoBinary returns the cargo binary to invoke, honoring the CARGO override.
func CargoBinary() string {
	if override := os.Getenv(CargoBinaryEnvironmentVariable); override != "" {
		return override
	}
	return defaultCargoBinary
}

// ShouldReinvoke reports whether the current invocation must be re-run under
// the nightly toolchain. It answers false when the guard variable is set,
// when the active toolchain may already be nightly, or when no nightly
// toolchain is installed.
func ShouldReinvoke() bool {
	if _, guardSet := os.LookupEnv(ReinvokeGuardEnvironmentVariable); guardSet {
		return false
	}
	if maybeNightly() {
		return false
	}
	if !canRunNightly() {
		return false
	}
	return true
}

// maybeNightly is optimistic: any failure to obtain or understand the version
// report counts as "possibly nightly" so the run proceeds without re-invoking.
func maybeNightly() bool {
	return !definitelyStable()
}

func definitelyStable() bool {
	// #nosec G204
	versionCommand := exec.Command(CargoBinary(), versionArgument)
	versionOutput, versionError := versionCommand.Output()
	if versionError != nil {
		return false
	}
	return IsStableVersionReport(string(versionOutput))
}

// IsStableVersionReport reports whether a `cargo --version` report describes
// a stable 1.x release with no nightly marker.
func IsStableVersionReport(report string) bool {
	if strings.Contains(report, nightlyVersionMarker) {
		return false
	}
	fields := strings.Fields(report)
	if len(fields) < 2 || fields[0] != versionReportProgram {
		return false
	}
	canonical := semanticVersionPrefix + fields[1]
	if metadataIndex := strings.Index(canonical, buildMetadataSeparator); metadataIndex >= 0 {
		canonical = canonical[:metadataIndex]
	}
	if prereleaseIndex := strings.Index(canonical, prereleaseSeparator); prereleaseIndex >= 0 {
		canonical = canonical[:prereleaseIndex]
	}
	return semver.IsValid(canonical) && semver.Major(canonical) == stableMajorVersion
}

// canRunNightly checks by trial invocation whether `cargo +nightly` works.
func canRunNightly() bool {
	trialCommand := exec.Command(defaultCargoBinary, NightlyToolchainSelector, versionArgument)
	_, trialError := trialCommand.Output()
	return trialError == nil
}
