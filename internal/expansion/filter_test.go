package expansion

import (
	"errors"
	"testing"

	"github.com/tyemirov/cargo-expand/internal/types"
)

func mustParseSelector(t *testing.T, text string) *types.Selector {
	t.Helper()
	selector, parseError := types.ParseSelector(text)
	if parseError != nil {
		t.Fatalf("ParseSelector(%q) error: %v", text, parseError)
	}
	return selector
}

func TestFilterExpandedSource(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		selector string
		expect   string
	}{
		{
			name:   "sanitize_removes_line_comment",
			input:  "// recursion limit note\nfn alpha() {}\n",
			expect: "fn alpha() {}\n",
		},
		{
			name:   "sanitize_removes_inline_block_comment",
			input:  "fn beta() { /* detail */ }\n",
			expect: "fn beta() { }\n",
		},
		{
			name:   "sanitize_removes_comment_inside_body",
			input:  "fn alpha() {\n    // inner note\n    let value = 1;\n}\n",
			expect: "fn alpha() {\n    let value = 1;\n}\n",
		},
		{
			name:     "selector_single_function",
			input:    "fn a() {}\nfn b() {}\n",
			selector: "b",
			expect:   "fn b() {}\n",
		},
		{
			name:     "selector_module_renders_whole_module",
			input:    "mod outer {\n    fn target() {}\n}\nfn target() {}\n",
			selector: "outer",
			expect:   "mod outer {\n    fn target() {}\n}\n",
		},
		{
			name:     "selector_keeps_every_suffix_match",
			input:    "mod outer {\n    fn target() {}\n}\nfn target() {}\n",
			selector: "outer::target",
			expect:   "fn target() {}\nfn target() {}\n",
		},
		{
			name:     "macro_suffix_restricts_to_macro_definitions",
			input:    "macro_rules! widget {\n    () => {};\n}\nfn widget() {}\n",
			selector: "widget!",
			expect:   "macro_rules! widget {\n    () => {};\n}\n",
		},
		{
			name:     "bare_name_matches_macro_and_function",
			input:    "macro_rules! widget {\n    () => {};\n}\nfn widget() {}\n",
			selector: "widget",
			expect:   "macro_rules! widget {\n    () => {};\n}\nfn widget() {}\n",
		},
		{
			name:     "outer_attributes_travel_with_the_item",
			input:    "#[derive(Clone)]\nstruct Widget {\n    field: u32,\n}\nfn unrelated() {}\n",
			selector: "Widget",
			expect:   "#[derive(Clone)]\nstruct Widget {\n    field: u32,\n}\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var selector *types.Selector
			if testCase.selector != "" {
				selector = mustParseSelector(t, testCase.selector)
			}
			outcome, filterError := FilterExpandedSource(testCase.input, selector)
			if filterError != nil {
				t.Fatalf("FilterExpandedSource error: %v", filterError)
			}
			if outcome.Degraded {
				t.Fatalf("unexpected degraded outcome for %q", testCase.input)
			}
			if outcome.Text != testCase.expect {
				t.Fatalf("unexpected filtered text:\nexpected %q\ngot      %q", testCase.expect, outcome.Text)
			}
		})
	}
}

func TestFilterExpandedSourceSelectorMiss(t *testing.T) {
	selector := mustParseSelector(t, "missing")
	_, filterError := FilterExpandedSource("fn present() {}\n", selector)
	var noSuchItemError *NoSuchItemError
	if !errors.As(filterError, &noSuchItemError) {
		t.Fatalf("expected NoSuchItemError, got %v", filterError)
	}
	if noSuchItemError.Error() != "no such item: missing" {
		t.Fatalf("unexpected message: %q", noSuchItemError.Error())
	}
}

func TestFilterExpandedSourceDegradesOnParseFailure(t *testing.T) {
	broken := "fn (\n"
	selector := mustParseSelector(t, "anything")
	outcome, filterError := FilterExpandedSource(broken, selector)
	if filterError != nil {
		t.Fatalf("degraded outcome should not error: %v", filterError)
	}
	if !outcome.Degraded {
		t.Fatalf("expected a degraded outcome for unparsable input")
	}
	if outcome.Text != broken {
		t.Fatalf("degraded outcome must pass the input through, got %q", outcome.Text)
	}
}

func TestSelectItemsIgnoresExtraOuterSegments(t *testing.T) {
	items := []Item{
		{SimpleName: "load", ModulePath: []string{"config"}},
		{SimpleName: "load", ModulePath: nil},
		{SimpleName: "store", ModulePath: []string{"config"}},
	}
	selector := mustParseSelector(t, "app::config::load")
	matched := SelectItems(items, *selector)
	if len(matched) != 2 {
		t.Fatalf("expected two matches, got %d", len(matched))
	}
}

func TestSelectItemsRejectsWrongModule(t *testing.T) {
	items := []Item{
		{SimpleName: "load", ModulePath: []string{"cache"}},
	}
	selector := mustParseSelector(t, "config::load")
	if matched := SelectItems(items, *selector); len(matched) != 0 {
		t.Fatalf("expected no matches, got %d", len(matched))
	}
}
