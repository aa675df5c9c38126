package toolchain

import "testing"

func TestIsStableVersionReport(t *testing.T) {
	testCases := []struct {
		name   string
		report string
		expect bool
	}{
		{
			name:   "stable_release",
			report: "cargo 1.81.0 (2dbb1af80 2024-08-20)\n",
			expect: true,
		},
		{
			name:   "nightly_release",
			report: "cargo 1.84.0-nightly (031049782 2024-08-19)\n",
			expect: false,
		},
		{
			name:   "beta_release_counts_as_stable",
			report: "cargo 1.82.0-beta.1 (abcdef012 2024-08-19)\n",
			expect: true,
		},
		{
			name:   "unrelated_program",
			report: "rustc 1.81.0 (eeb90cda1 2024-09-04)\n",
			expect: false,
		},
		{
			name:   "major_version_two",
			report: "cargo 2.0.0 (ffffffff 2030-01-01)\n",
			expect: false,
		},
		{
			name:   "unparsable_version",
			report: "cargo one-dot-eighty\n",
			expect: false,
		},
		{
			name:   "empty_report",
			report: "",
			expect: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := IsStableVersionReport(testCase.report); actual != testCase.expect {
				t.Fatalf("IsStableVersionReport(%q) = %v, expected %v", testCase.report, actual, testCase.expect)
			}
		})
	}
}

func TestShouldReinvokeHonorsEscapeHatch(t *testing.T) {
	t.Setenv(ReinvokeGuardEnvironmentVariable, "1")
	if ShouldReinvoke() {
		t.Fatalf("guard variable set must suppress re-invocation")
	}

	// Any value counts, including empty: presence alone marks the child.
	t.Setenv(ReinvokeGuardEnvironmentVariable, "")
	if ShouldReinvoke() {
		t.Fatalf("empty guard value must still suppress re-invocation")
	}
}

func TestCargoBinaryOverride(t *testing.T) {
	t.Setenv(CargoBinaryEnvironmentVariable, "/opt/rust/bin/cargo")
	if binary := CargoBinary(); binary != "/opt/rust/bin/cargo" {
		t.Fatalf("expected override to win, got %q", binary)
	}

	t.Setenv(CargoBinaryEnvironmentVariable, "")
	if binary := CargoBinary(); binary != "cargo" {
		t.Fatalf("expected default cargo, got %q", binary)
	}
}
