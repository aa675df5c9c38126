package toolchain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	signalTerminationExitCode = 1
	scannerInitialBufferSize  = 64 * 1024
	scannerMaximumBufferSize  = 1024 * 1024
)

// LinePredicate reports whether a diagnostic line should be suppressed.
type LinePredicate func(line string) bool

// discardedCargoLines are known benign cargo and rustc notices produced by
// requesting a single output file from a build that computes several.
var discardedCargoLines = []string{
	"ignoring specified output filename because multiple outputs were requested",
	"ignoring specified output filename for 'link' output because multiple outputs were requested",
	"ignoring --out-dir flag due to -o flag",
	"ignoring -C extra-filename flag due to -o flag",
	"due to multiple output types requested, the explicitly specified output file name will be adapted for each output type",
	"warning emitted",
	"warnings emitted",
	") generated ",
}

// IgnoreCargoNoise is the production predicate: blank lines and the known
// benign notices are suppressed, everything else passes through.
func IgnoreCargoNoise(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	for _, discarded := range discardedCargoLines {
		if strings.Contains(line, discarded) {
			return true
		}
	}
	return false
}

// RunFiltered starts the command with its stderr piped, forwards every
// diagnostic line that the predicate does not suppress to diagnostics in
// arrival order, waits for termination and returns the exit code. A process
// killed by a signal reports exit code 1. Spawn and read failures are
// returned as errors; non-zero exits are not.
func RunFiltered(command *exec.Cmd, suppress LinePredicate, diagnostics io.Writer) (int, error) {
	stderrPipe, pipeError := command.StderrPipe()
	if pipeError != nil {
		return 0, fmt.Errorf("capture diagnostics of %s: %w", command.Path, pipeError)
	}

	if startError := command.Start(); startError != nil {
		return 0, fmt.Errorf("start %s: %w", command.Path, startError)
	}

	var drainGroup errgroup.Group
	drainGroup.Go(func() error {
		scanner := bufio.NewScanner(stderrPipe)
		scanner.Buffer(make([]byte, 0, scannerInitialBufferSize), scannerMaximumBufferSize)
		for scanner.Scan() {
			diagnosticLine := scanner.Text()
			if suppress != nil && suppress(diagnosticLine) {
				continue
			}
			if _, writeError := fmt.Fprintln(diagnostics, diagnosticLine); writeError != nil {
				_, _ = io.Copy(io.Discard, stderrPipe)
				return fmt.Errorf("forward diagnostics: %w", writeError)
			}
		}
		scanError := scanner.Err()
		if scanError != nil {
			// The pipe must be exhausted even after a read failure, or the
			// child blocks on a full stderr buffer and Wait never returns.
			_, _ = io.Copy(io.Discard, stderrPipe)
		}
		return scanError
	})

	drainError := drainGroup.Wait()

	waitError := command.Wait()
	if drainError != nil {
		return 0, drainError
	}
	if waitError == nil {
		return 0, nil
	}
	var exitError *exec.ExitError
	if errors.As(waitError, &exitError) {
		code := exitError.ExitCode()
		if code < 0 {
			code = signalTerminationExitCode
		}
		return code, nil
	}
	return 0, fmt.Errorf("wait for %s: %w", command.Path, waitError)
}
