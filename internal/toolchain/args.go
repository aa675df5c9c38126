package toolchain

import (
	"runtime"
	"strconv"

	"github.com/tyemirov/cargo-expand/internal/types"
)

const (
	rustcSubcommand          = "rustc"
	testProfileArgument      = "--profile=test"
	checkProfileArgument     = "--profile=check"
	releaseArgument          = "--release"
	featuresFlag             = "--features"
	allFeaturesArgument      = "--all-features"
	noDefaultFeaturesFlag    = "--no-default-features"
	libArgument              = "--lib"
	binFlag                  = "--bin"
	exampleFlag              = "--example"
	testFlag                 = "--test"
	benchFlag                = "--bench"
	targetFlag               = "--target"
	targetDirectoryFlag      = "--target-dir"
	manifestPathFlag         = "--manifest-path"
	packageFlag              = "--package"
	jobsFlag                 = "--jobs"
	verboseArgument          = "--verbose"
	colorFlag                = "--color"
	frozenArgument           = "--frozen"
	lockedArgument           = "--locked"
	unstableFlag             = "-Z"
	argumentSeparator        = "--"
	outputFileFlag           = "-o"
	unprettyExpandedArgument = "-Zunpretty=expanded"
	windowsOperatingSystem   = "windows"
)

// BuildCargoArguments assembles the cargo invocation that writes expanded
// source to outputFilePath. The mapping from options to arguments is fixed
// and deterministic; stderrIsTerminal is the only environmental input and is
// passed in by the caller so the function stays pure.
func BuildCargoArguments(options types.Options, color types.Coloring, outputFilePath string, stderrIsTerminal bool) *Line {
	line := NewLine(CargoBinary())

	line.Append(rustcSubcommand)

	if options.Tests && options.Test == "" {
		line.Append(testProfileArgument)
	} else {
		line.Append(checkProfileArgument)
	}

	if options.Release {
		line.Append(releaseArgument)
	}

	if options.Features != "" {
		line.Append(featuresFlag)
		line.Append(options.Features)
	}

	if options.AllFeatures {
		line.Append(allFeaturesArgument)
	}

	if options.NoDefaultFeatures {
		line.Append(noDefaultFeaturesFlag)
	}

	if options.Lib {
		line.Append(libArgument)
	}

	if options.Bin != "" {
		line.Append(binFlag)
		line.Append(options.Bin)
	}

	if options.Example != "" {
		line.Append(exampleFlag)
		line.Append(options.Example)
	}

	if options.Test != "" {
		line.Append(testFlag)
		line.Append(options.Test)
	}

	if options.Bench != "" {
		line.Append(benchFlag)
		line.Append(options.Bench)
	}

	if options.Target != "" {
		line.Append(targetFlag)
		line.Append(options.Target)
	}

	if options.TargetDirectory != "" {
		line.Append(targetDirectoryFlag)
		line.Append(options.TargetDirectory)
	}

	if options.ManifestPath != "" {
		line.Append(manifestPathFlag)
		line.Append(options.ManifestPath)
	}

	if options.Package != "" {
		line.Append(packageFlag)
		line.Append(options.Package)
	}

	if options.Jobs > 0 {
		line.Append(jobsFlag)
		line.Append(strconv.Itoa(options.Jobs))
	}

	if options.Verbose {
		line.Append(verboseArgument)
	}

	line.Append(colorFlag)
	line.Append(resolveColorArgument(color, stderrIsTerminal))

	if options.Frozen {
		line.Append(frozenArgument)
	}

	if options.Locked {
		line.Append(lockedArgument)
	}

	for _, unstableValue := range options.UnstableFlags {
		line.Append(unstableFlag)
		line.Append(unstableValue)
	}

	line.Append(argumentSeparator)

	line.Append(outputFileFlag)
	line.Append(outputFilePath)
	line.Append(unprettyExpandedArgument)

	return line
}

// resolveColorArgument computes the literal --color value handed to cargo.
// Auto resolves from the diagnostic stream: cargo's colored diagnostics are
// requested only when stderr is a terminal, and never on Windows.
func resolveColorArgument(color types.Coloring, stderrIsTerminal bool) string {
	if color != types.ColoringAuto {
		return string(color)
	}
	if runtime.GOOS != windowsOperatingSystem && stderrIsTerminal {
		return string(types.ColoringAlways)
	}
	return string(types.ColoringNever)
}
