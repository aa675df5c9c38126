package types

import "testing"

func TestParseColoring(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectValue Coloring
		expectError bool
	}{
		{name: "auto", input: "auto", expectValue: ColoringAuto},
		{name: "always", input: "always", expectValue: ColoringAlways},
		{name: "never", input: "never", expectValue: ColoringNever},
		{name: "unknown", input: "sometimes", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			value, parseError := ParseColoring(testCase.input)
			if testCase.expectError {
				if parseError == nil {
					t.Fatalf("expected error for input %q", testCase.input)
				}
				return
			}
			if parseError != nil {
				t.Fatalf("ParseColoring(%q) error: %v", testCase.input, parseError)
			}
			if value != testCase.expectValue {
				t.Fatalf("expected %q, got %q", testCase.expectValue, value)
			}
		})
	}
}

func TestExitCodeErrorMessage(t *testing.T) {
	exitCodeError := NewExitCodeError(3)
	if exitCodeError.Code != 3 {
		t.Fatalf("expected code 3, got %d", exitCodeError.Code)
	}
	if exitCodeError.Error() != "exit code 3" {
		t.Fatalf("unexpected message: %q", exitCodeError.Error())
	}
}
