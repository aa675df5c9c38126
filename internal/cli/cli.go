// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/tyemirov/cargo-expand/internal/toolchain"
	"github.com/tyemirov/cargo-expand/internal/types"
	"github.com/tyemirov/cargo-expand/internal/utils"
)

const (
	cargoProgramName     = "cargo"
	expandSubcommandName = "expand"

	rootUse              = "cargo-expand [flags] [ITEM]"
	rootShortDescription = "show the result of macro expansion"
	rootLongDescription  = `cargo-expand prints the source of a crate with all macros expanded.
It drives cargo on the nightly toolchain, filters the expanded output, runs it
through rustfmt and pretty-prints the result. Pass an ITEM path such as
ident, outer::inner::ident or ident! to show a single item.`
	rootUsageExample = `  # Expand the whole crate
  cargo expand

  # Expand one function inside a module
  cargo expand tests::test_fmt

  # Expand a macro rather than a same-named function
  cargo expand 'serialize!'`

	versionFlagName        = "version"
	versionFlagDescription = "display application version"
	versionTemplate        = "cargo-expand version: %s\n"

	testsFlagName                  = "tests"
	testsFlagDescription           = "build in test mode"
	libFlagName                    = "lib"
	libFlagDescription             = "expand the library target"
	binFlagName                    = "bin"
	binFlagDescription             = "expand the named binary"
	exampleFlagName                = "example"
	exampleFlagDescription         = "expand the named example"
	testFlagName                   = "test"
	testFlagDescription            = "expand the named test target"
	benchFlagName                  = "bench"
	benchFlagDescription           = "expand the named bench target"
	featuresFlagName               = "features"
	featuresFlagDescription        = "space or comma separated list of features to activate"
	allFeaturesFlagName            = "all-features"
	allFeaturesFlagDescription     = "activate all available features"
	noDefaultFeaturesFlagName      = "no-default-features"
	noDefaultFeaturesDescription   = "do not activate the default features"
	releaseFlagName                = "release"
	releaseFlagDescription         = "build artifacts in release mode"
	targetFlagName                 = "target"
	targetFlagDescription          = "target triple to build for"
	targetDirectoryFlagName        = "target-dir"
	targetDirectoryFlagDescription = "directory for all generated artifacts"
	manifestPathFlagName           = "manifest-path"
	manifestPathFlagDescription    = "path to Cargo.toml"
	packageFlagName                = "package"
	packageFlagDescription         = "package to expand"
	jobsFlagName                   = "jobs"
	jobsFlagDescription            = "number of parallel build jobs"
	verboseFlagName                = "verbose"
	verboseFlagDescription         = "print the full cargo command being run"
	frozenFlagName                 = "frozen"
	frozenFlagDescription          = "require Cargo.lock and cache to be up to date"
	lockedFlagName                 = "locked"
	lockedFlagDescription          = "require Cargo.lock to be up to date"
	unstableFlagName               = "Z"
	unstableFlagDescription        = "unstable (nightly-only) flags to cargo"
	colorFlagName                  = "color"
	colorFlagDescription           = "coloring: auto, always, never"
	themeFlagName                  = "theme"
	themeFlagDescription           = "syntax highlighting theme"
	themesFlagName                 = "themes"
	themesFlagDescription          = "print available syntax highlighting theme names"
	uglyFlagName                   = "ugly"
	uglyFlagDescription            = "do not format the expanded output"
	tokensFlagName                 = "tokens"
	tokensFlagDescription          = "report the token count of the expanded output"
	modelFlagName                  = "model"
	modelFlagDescription           = "tokenizer model to use for token counting"
	defaultTokenizerModelName      = "gpt-4o"
	copyFlagName                   = "copy"
	copyFlagDescription            = "copy the expanded output to the clipboard"

	nightlyReinvokeFailedFormat = "re-invoke on nightly toolchain: %w"
	reinvokeGuardAssignment     = "1"
)

// Execute runs the cargo-expand application, re-invoking itself on the
// nightly toolchain first when the active toolchain cannot expand macros.
func Execute() error {
	if toolchain.ShouldReinvoke() {
		return runNightlyPassthrough(os.Args[1:])
	}
	rootCommand := createRootCommand()
	rootCommand.SetArgs(normalizeInvocationArguments(os.Args[1:]))
	return rootCommand.Execute()
}

// runNightlyPassthrough re-runs the original invocation as `cargo +nightly
// expand`, marking the child so it never re-invokes again, and propagates
// the child's exit code verbatim.
func runNightlyPassthrough(arguments []string) error {
	passthrough := arguments
	if len(passthrough) > 0 && passthrough[0] == expandSubcommandName {
		passthrough = passthrough[1:]
	}
	nightlyArguments := append([]string{toolchain.NightlyToolchainSelector, expandSubcommandName}, passthrough...)
	// #nosec G204
	nightlyCommand := exec.Command(cargoProgramName, nightlyArguments...)
	nightlyCommand.Stdin = os.Stdin
	nightlyCommand.Stdout = os.Stdout
	nightlyCommand.Stderr = os.Stderr
	nightlyCommand.Env = append(os.Environ(), toolchain.ReinvokeGuardEnvironmentVariable+"="+reinvokeGuardAssignment)

	runError := nightlyCommand.Run()
	if runError == nil {
		return nil
	}
	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		code := exitError.ExitCode()
		if code < 0 {
			code = 1
		}
		return types.NewExitCodeError(code)
	}
	return fmt.Errorf(nightlyReinvokeFailedFormat, runError)
}

// normalizeInvocationArguments strips the leading subcommand token cargo
// inserts when the tool runs as `cargo expand`.
func normalizeInvocationArguments(arguments []string) []string {
	if len(arguments) > 0 && arguments[0] == expandSubcommandName {
		return arguments[1:]
	}
	return arguments
}

// flagValues stores raw command line input before validation.
type flagValues struct {
	tests             bool
	lib               bool
	bin               string
	example           string
	test              string
	bench             string
	features          string
	allFeatures       bool
	noDefaultFeatures bool
	release           bool
	target            string
	targetDirectory   string
	manifestPath      string
	packageName       string
	jobs              int
	verbose           bool
	frozen            bool
	locked            bool
	unstableFlags     []string
	color             string
	theme             string
	listThemes        bool
	ugly              bool
	countTokens       bool
	tokenizerModel    string
	copyToClipboard   bool
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var values flagValues

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			options, optionsError := values.toOptions(arguments)
			if optionsError != nil {
				return optionsError
			}
			return runExpand(*options)
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}

	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	commandFlags := rootCommand.Flags()
	commandFlags.BoolVar(&values.tests, testsFlagName, false, testsFlagDescription)
	commandFlags.BoolVar(&values.lib, libFlagName, false, libFlagDescription)
	commandFlags.StringVar(&values.bin, binFlagName, "", binFlagDescription)
	commandFlags.StringVar(&values.example, exampleFlagName, "", exampleFlagDescription)
	commandFlags.StringVar(&values.test, testFlagName, "", testFlagDescription)
	commandFlags.StringVar(&values.bench, benchFlagName, "", benchFlagDescription)
	commandFlags.StringVar(&values.features, featuresFlagName, "", featuresFlagDescription)
	commandFlags.BoolVar(&values.allFeatures, allFeaturesFlagName, false, allFeaturesFlagDescription)
	commandFlags.BoolVar(&values.noDefaultFeatures, noDefaultFeaturesFlagName, false, noDefaultFeaturesDescription)
	commandFlags.BoolVar(&values.release, releaseFlagName, false, releaseFlagDescription)
	commandFlags.StringVar(&values.target, targetFlagName, "", targetFlagDescription)
	commandFlags.StringVar(&values.targetDirectory, targetDirectoryFlagName, "", targetDirectoryFlagDescription)
	commandFlags.StringVar(&values.manifestPath, manifestPathFlagName, "", manifestPathFlagDescription)
	commandFlags.StringVar(&values.packageName, packageFlagName, "", packageFlagDescription)
	commandFlags.IntVar(&values.jobs, jobsFlagName, 0, jobsFlagDescription)
	commandFlags.BoolVar(&values.verbose, verboseFlagName, false, verboseFlagDescription)
	commandFlags.BoolVar(&values.frozen, frozenFlagName, false, frozenFlagDescription)
	commandFlags.BoolVar(&values.locked, lockedFlagName, false, lockedFlagDescription)
	commandFlags.StringArrayVarP(&values.unstableFlags, unstableFlagName, unstableFlagName, nil, unstableFlagDescription)
	commandFlags.StringVar(&values.color, colorFlagName, "", colorFlagDescription)
	commandFlags.StringVar(&values.theme, themeFlagName, "", themeFlagDescription)
	commandFlags.BoolVar(&values.listThemes, themesFlagName, false, themesFlagDescription)
	commandFlags.BoolVar(&values.ugly, uglyFlagName, false, uglyFlagDescription)
	commandFlags.BoolVar(&values.countTokens, tokensFlagName, false, tokensFlagDescription)
	commandFlags.StringVar(&values.tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	commandFlags.BoolVar(&values.copyToClipboard, copyFlagName, false, copyFlagDescription)

	return rootCommand
}

// toOptions validates the raw flag input into an immutable Options record.
func (values flagValues) toOptions(arguments []string) (*types.Options, error) {
	options := &types.Options{
		Tests:             values.tests,
		Lib:               values.lib,
		Bin:               values.bin,
		Example:           values.example,
		Test:              values.test,
		Bench:             values.bench,
		Features:          values.features,
		AllFeatures:       values.allFeatures,
		NoDefaultFeatures: values.noDefaultFeatures,
		Release:           values.release,
		Target:            values.target,
		TargetDirectory:   values.targetDirectory,
		ManifestPath:      values.manifestPath,
		Package:           values.packageName,
		Jobs:              values.jobs,
		Verbose:           values.verbose,
		Frozen:            values.frozen,
		Locked:            values.locked,
		UnstableFlags:     values.unstableFlags,
		Color:             types.ColoringAuto,
		Theme:             values.theme,
		ListThemes:        values.listThemes,
		Ugly:              values.ugly,
		CountTokens:       values.countTokens,
		TokenizerModel:    values.tokenizerModel,
		CopyToClipboard:   values.copyToClipboard,
	}

	if values.color != "" {
		parsedColor, colorError := types.ParseColoring(values.color)
		if colorError != nil {
			return nil, colorError
		}
		options.Color = parsedColor
		options.ColorSet = true
	}

	if len(arguments) == 1 {
		selector, selectorError := types.ParseSelector(arguments[0])
		if selectorError != nil {
			return nil, selectorError
		}
		options.Item = selector
	}

	return options, nil
}
