// Package toolchain drives the cargo toolchain: probing for nightly,
// assembling the expansion command line and running it with filtered
// diagnostics.
package toolchain

import "strings"

const shellQuoteCharacters = " \t\"'`$\\!*?[]{}()<>|&;#~"

// Line is an ordered subprocess invocation: a program followed by its
// arguments. It is assembled once per run and consumed once.
type Line struct {
	program   string
	arguments []string
}

// NewLine constructs a Line for the given program.
func NewLine(program string) *Line {
	return &Line{program: program}
}

// Append adds one argument to the end of the line.
func (line *Line) Append(argument string) {
	line.arguments = append(line.arguments, argument)
}

// Prepend inserts one argument ahead of all existing arguments.
func (line *Line) Prepend(argument string) {
	line.arguments = append([]string{argument}, line.arguments...)
}

// Program returns the program name.
func (line *Line) Program() string {
	return line.program
}

// Arguments returns the argument list in order.
func (line *Line) Arguments() []string {
	return line.arguments
}

// String renders the line as a shell-quoted display string for diagnostics.
func (line *Line) String() string {
	rendered := make([]string, 0, len(line.arguments)+1)
	rendered = append(rendered, quoteArgument(line.program))
	for _, argument := range line.arguments {
		rendered = append(rendered, quoteArgument(argument))
	}
	return strings.Join(rendered, " ")
}

func quoteArgument(argument string) string {
	if argument == "" {
		return "''"
	}
	if !strings.ContainsAny(argument, shellQuoteCharacters) {
		return argument
	}
	return "'" + strings.ReplaceAll(argument, "'", `'\''`) + "'"
}
