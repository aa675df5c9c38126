package toolchain

import (
	"bytes"
	"os/exec"
	"runtime"
	"testing"
)

func TestIgnoreCargoNoise(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		expect bool
	}{
		{
			name:   "blank_line",
			line:   "   ",
			expect: true,
		},
		{
			name:   "output_filename_conflict",
			line:   "warning: ignoring specified output filename because multiple outputs were requested",
			expect: true,
		},
		{
			name:   "out_dir_conflict",
			line:   "warning: ignoring --out-dir flag due to -o flag",
			expect: true,
		},
		{
			name:   "warning_count_summary",
			line:   "warning: 2 warnings emitted",
			expect: true,
		},
		{
			name:   "generated_summary",
			line:   "warning: `demo` (lib) generated 2 warnings",
			expect: true,
		},
		{
			name:   "real_compile_error",
			line:   "error[E0308]: mismatched types",
			expect: false,
		},
		{
			name:   "ordinary_progress_line",
			line:   "   Compiling demo v0.1.0 (/work/demo)",
			expect: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := IgnoreCargoNoise(testCase.line); actual != testCase.expect {
				t.Fatalf("IgnoreCargoNoise(%q) = %v, expected %v", testCase.line, actual, testCase.expect)
			}
		})
	}
}

func TestRunFilteredForwardsAndFilters(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}

	script := ">&2 echo keep one; >&2 echo 'warning: 1 warning emitted'; >&2 echo keep two; exit 3"
	command := exec.Command("sh", "-c", script)

	var diagnostics bytes.Buffer
	exitCode, runError := RunFiltered(command, IgnoreCargoNoise, &diagnostics)
	if runError != nil {
		t.Fatalf("RunFiltered error: %v", runError)
	}
	if exitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", exitCode)
	}
	if diagnostics.String() != "keep one\nkeep two\n" {
		t.Fatalf("unexpected forwarded diagnostics: %q", diagnostics.String())
	}
}

func TestRunFilteredSurvivesOversizedDiagnosticLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}

	// A single diagnostic line well past the scanner cap; the child must
	// still be reaped instead of stalling on a full stderr pipe.
	script := "head -c 2097152 /dev/zero | tr '\\0' 'a' >&2; echo >&2; exit 0"
	command := exec.Command("sh", "-c", script)

	var diagnostics bytes.Buffer
	if _, runError := RunFiltered(command, IgnoreCargoNoise, &diagnostics); runError == nil {
		t.Fatalf("expected an error for an oversized diagnostic line")
	}
}

func TestRunFilteredSpawnFailure(t *testing.T) {
	command := exec.Command("/nonexistent/definitely-missing-binary")
	var diagnostics bytes.Buffer
	if _, runError := RunFiltered(command, IgnoreCargoNoise, &diagnostics); runError == nil {
		t.Fatalf("expected spawn failure to surface as an error")
	}
}
