package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/tyemirov/cargo-expand/internal/config"
	"github.com/tyemirov/cargo-expand/internal/expansion"
	"github.com/tyemirov/cargo-expand/internal/render"
	"github.com/tyemirov/cargo-expand/internal/rustfmt"
	"github.com/tyemirov/cargo-expand/internal/services/clipboard"
	"github.com/tyemirov/cargo-expand/internal/tokenizer"
	"github.com/tyemirov/cargo-expand/internal/toolchain"
	"github.com/tyemirov/cargo-expand/internal/types"
)

const (
	scratchDirectoryPattern = "cargo-expand"
	expandedFileName        = "expanded.rs"
	expandedFileMode        = 0o644

	genericFailureExitCode = 1

	cannotExpandItemUglyFormat        = "ERROR: cannot expand single item (%s) in ugly mode."
	cannotExpandItemNoFormatterFormat = "ERROR: cannot expand single item (%s) without rustfmt."
	installRustfmtHintMessage         = "Install rustfmt by running `rustup component add rustfmt --toolchain nightly`."
	noExpandedOutputMessage           = "ERROR: rustc produced no expanded output"
	noSuchItemWarningFormat           = "WARNING: no such item: %s"
	invalidConfiguredColorFormat      = "WARNING: invalid color in configuration: %v"
	preferencesLoadWarningFormat      = "WARNING: failed to load configuration: %v"
	tokenCounterWarningFormat         = "WARNING: failed to initialize tokenizer: %v"
	tokenCountWarningFormat           = "WARNING: failed to count tokens: %v"
	tokenCountReportFormat            = "expanded output is %d tokens (%s)"
	clipboardWarningFormat            = "WARNING: failed to copy to clipboard: %v"
	runningCommandFormat              = "%12s `%s`"
	runningLabel                      = "Running"

	scratchDirectoryErrorFormat = "create scratch directory: %w"
	readExpandedErrorFormat     = "read expanded output: %w"
	writeFilteredErrorFormat    = "write filtered output: %w"
	readFormattedErrorFormat    = "read formatted output: %w"
)

// sourceFormatter rewrites a source file in place. Satisfied by
// rustfmt.Formatter; tests substitute a stub.
type sourceFormatter interface {
	Format(filePath string)
}

// runExpand executes the whole expansion pipeline for one Options record.
func runExpand(options types.Options) error {
	preferences, preferencesError := config.LoadPreferences(config.LoadOptions{})
	if preferencesError != nil {
		fmt.Fprintf(os.Stderr, preferencesLoadWarningFormat+"\n", preferencesError)
		preferences = config.Preferences{}
	}

	if options.ListThemes {
		render.ListThemes(os.Stdout)
		return nil
	}

	if options.Item != nil && options.Ugly {
		fmt.Fprintf(os.Stderr, cannotExpandItemUglyFormat+"\n", options.Item)
		return types.NewExitCodeError(genericFailureExitCode)
	}

	formatterPath := ""
	formatterAvailable := false
	if !options.Ugly {
		formatterPath, formatterAvailable = rustfmt.ResolveBinary()
		if options.Item != nil && !formatterAvailable {
			fmt.Fprintf(os.Stderr, cannotExpandItemNoFormatterFormat+"\n", options.Item)
			fmt.Fprintln(os.Stderr, installRustfmtHintMessage)
			return types.NewExitCodeError(genericFailureExitCode)
		}
	}

	scratchDirectory, scratchError := os.MkdirTemp("", scratchDirectoryPattern)
	if scratchError != nil {
		return fmt.Errorf(scratchDirectoryErrorFormat, scratchError)
	}
	defer os.RemoveAll(scratchDirectory)
	outputFilePath := filepath.Join(scratchDirectory, expandedFileName)

	color := resolveColor(options, preferences)

	stderrIsTerminal := isTerminal(os.Stderr.Fd())
	commandLine := toolchain.BuildCargoArguments(options, color, outputFilePath, stderrIsTerminal)
	if options.Verbose {
		fmt.Fprintf(os.Stderr, runningCommandFormat+"\n", runningLabel, displayLine(commandLine).String())
	}

	// #nosec G204
	cargoCommand := exec.Command(commandLine.Program(), commandLine.Arguments()...)
	exitCode, runError := toolchain.RunFiltered(cargoCommand, toolchain.IgnoreCargoNoise, os.Stderr)
	if runError != nil {
		return runError
	}

	if _, statError := os.Stat(outputFilePath); statError != nil {
		if exitCode != 0 {
			return types.NewExitCodeError(exitCode)
		}
		return types.NewExitCodeError(genericFailureExitCode)
	}

	expandedBytes, readError := os.ReadFile(outputFilePath)
	if readError != nil {
		return fmt.Errorf(readExpandedErrorFormat, readError)
	}
	content := string(expandedBytes)
	if content == "" {
		fmt.Fprintln(os.Stderr, noExpandedOutputMessage)
		if exitCode != 0 {
			return types.NewExitCodeError(exitCode)
		}
		return types.NewExitCodeError(genericFailureExitCode)
	}

	if formatterAvailable {
		refined, refineError := refineExpandedSource(content, options.Item, rustfmt.NewFormatter(formatterPath), scratchDirectory, outputFilePath)
		if refineError != nil {
			var noSuchItem *expansion.NoSuchItemError
			if errors.As(refineError, &noSuchItem) {
				fmt.Fprintf(os.Stderr, noSuchItemWarningFormat+"\n", noSuchItem.Selector)
				return types.NewExitCodeError(genericFailureExitCode)
			}
			return refineError
		}
		content = refined
	}

	theme := options.Theme
	if theme == "" {
		theme = preferences.Theme
	}
	colorize := render.ShouldColorize(color, theme, isTerminal(os.Stdout.Fd()))

	fmt.Fprintln(os.Stderr)
	// Display failures never fail the run.
	_ = render.Present(content, render.Settings{
		Theme:    theme,
		Colorize: colorize,
		UsePager: preferences.PagerEnabled(),
	})

	if options.CountTokens {
		reportTokenCount(content, options.TokenizerModel)
	}

	if options.CopyToClipboard {
		if copyError := clipboard.NewService().Copy(content); copyError != nil {
			fmt.Fprintf(os.Stderr, clipboardWarningFormat+"\n", copyError)
		}
	}

	return nil
}

// refineExpandedSource runs the filter and reformat stages: placeholder
// substitution, parse/sanitize/select, formatter invocation with edition
// fallback, placeholder restoration. The placeholder must survive through
// the formatter, so restoration happens only after the file is read back.
func refineExpandedSource(content string, selector *types.Selector, formatter sourceFormatter, scratchDirectory string, outputFilePath string) (string, error) {
	substituted := expansion.ReplaceCrateRootToken(content)

	outcome, filterError := expansion.FilterExpandedSource(substituted, selector)
	if filterError != nil {
		return "", filterError
	}

	if writeError := os.WriteFile(outputFilePath, []byte(outcome.Text), expandedFileMode); writeError != nil {
		return "", fmt.Errorf(writeFilteredErrorFormat, writeError)
	}
	if configurationError := rustfmt.WriteConfiguration(scratchDirectory); configurationError != nil {
		return "", configurationError
	}

	formatter.Format(outputFilePath)

	formattedBytes, readError := os.ReadFile(outputFilePath)
	if readError != nil {
		return "", fmt.Errorf(readFormattedErrorFormat, readError)
	}
	return expansion.RestoreCrateRootToken(string(formattedBytes)), nil
}

// resolveColor picks the effective color policy: explicit flag, then
// persisted configuration, then Auto. A malformed configured value warns
// and falls back instead of aborting.
func resolveColor(options types.Options, preferences config.Preferences) types.Coloring {
	if options.ColorSet {
		return options.Color
	}
	if preferences.Color != "" {
		configured, parseError := types.ParseColoring(preferences.Color)
		if parseError == nil {
			return configured
		}
		fmt.Fprintf(os.Stderr, invalidConfiguredColorFormat+"\n", parseError)
	}
	return types.ColoringAuto
}

// reportTokenCount writes a token-count summary of the final text to stderr.
func reportTokenCount(content string, model string) {
	counter, resolvedModel, counterError := tokenizer.NewCounter(model)
	if counterError != nil {
		fmt.Fprintf(os.Stderr, tokenCounterWarningFormat+"\n", counterError)
		return
	}
	tokens, countError := counter.CountString(content)
	if countError != nil {
		fmt.Fprintf(os.Stderr, tokenCountWarningFormat+"\n", countError)
		return
	}
	fmt.Fprintf(os.Stderr, tokenCountReportFormat+"\n", tokens, resolvedModel)
}

// displayLine renders the command line as it effectively runs under rustup,
// with the nightly toolchain selector ahead of the cargo arguments.
func displayLine(commandLine *toolchain.Line) *toolchain.Line {
	display := toolchain.NewLine(commandLine.Program())
	for _, argument := range commandLine.Arguments() {
		display.Append(argument)
	}
	display.Prepend(toolchain.NightlyToolchainSelector)
	return display
}

func isTerminal(descriptor uintptr) bool {
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}
