// Package render decides between highlighted and plain presentation of the
// final expanded source and performs the output.
package render

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/tyemirov/cargo-expand/internal/types"
)

const (
	languageHint = "rust"

	// NoThemeSentinel disables highlighting under automatic color selection.
	NoThemeSentinel = "none"

	// terminalFormatterName selects 256-color output; true color is never
	// forced.
	terminalFormatterName = "terminal256"

	tabWidth = 4

	pagerEnvironmentVariable = "PAGER"
	defaultPagerProgram      = "less"
)

// defaultPagerArguments make less behave like "page only if the content
// exceeds one screen" and pass highlighting escapes through.
var defaultPagerArguments = []string{"-F", "-R", "-X"}

// Settings captures one presentation decision.
type Settings struct {
	Theme    string
	Colorize bool
	UsePager bool
}

// ShouldColorize resolves the effective use-color decision from the color
// policy, the resolved theme and terminal detection of the output stream.
func ShouldColorize(color types.Coloring, theme string, stdoutIsTerminal bool) bool {
	switch color {
	case types.ColoringAlways:
		return true
	case types.ColoringNever:
		return false
	default:
		return theme != NoThemeSentinel && stdoutIsTerminal
	}
}

// ListThemes writes the available highlighting theme names, one per line.
func ListThemes(writer io.Writer) {
	for _, themeName := range styles.Names() {
		fmt.Fprintln(writer, themeName)
	}
}

// Present writes the content to standard output, highlighted when the
// settings ask for color. Presentation errors are reported to the caller,
// which treats them as non-fatal.
func Present(content string, settings Settings) error {
	if !settings.Colorize {
		_, writeError := io.WriteString(os.Stdout, content)
		return writeError
	}

	destination, finish := outputDestination(settings.UsePager)
	highlightError := highlight(destination, content, settings.Theme)
	finishError := finish()
	if highlightError != nil {
		return highlightError
	}
	return finishError
}

// highlight renders the content through the chroma Rust lexer with the
// resolved theme, tabs expanded to the fixed width.
func highlight(destination io.Writer, content string, themeName string) error {
	expanded := strings.ReplaceAll(content, "\t", strings.Repeat(" ", tabWidth))

	lexer := lexers.Get(languageHint)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Fallback
	if themeName != "" && themeName != NoThemeSentinel {
		if resolved := styles.Get(themeName); resolved != nil {
			style = resolved
		}
	}

	formatter := formatters.Get(terminalFormatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, tokenizeError := lexer.Tokenise(nil, expanded)
	if tokenizeError != nil {
		return tokenizeError
	}
	return formatter.Format(destination, style, iterator)
}

// outputDestination returns the writer presentation goes to and a completion
// callback. With paging enabled the writer is the pager's stdin; a pager
// that fails to start degrades to direct standard output.
func outputDestination(usePager bool) (io.Writer, func() error) {
	if !usePager {
		return os.Stdout, func() error { return nil }
	}

	pagerProgram, pagerArguments := resolvePagerCommand()
	// #nosec G204
	pagerCommand := exec.Command(pagerProgram, pagerArguments...)
	pagerCommand.Stdout = os.Stdout
	pagerCommand.Stderr = os.Stderr
	pagerInput, pipeError := pagerCommand.StdinPipe()
	if pipeError != nil {
		return os.Stdout, func() error { return nil }
	}
	if startError := pagerCommand.Start(); startError != nil {
		return os.Stdout, func() error { return nil }
	}
	return pagerInput, func() error {
		closeError := pagerInput.Close()
		waitError := pagerCommand.Wait()
		if closeError != nil {
			return closeError
		}
		return waitError
	}
}

func resolvePagerCommand() (string, []string) {
	configured := strings.TrimSpace(os.Getenv(pagerEnvironmentVariable))
	if configured == "" {
		return defaultPagerProgram, defaultPagerArguments
	}
	fields := strings.Fields(configured)
	return fields[0], fields[1:]
}
