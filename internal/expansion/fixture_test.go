package expansion

import (
	"path"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/tyemirov/cargo-expand/internal/types"
)

const filterCasesArchivePath = "testdata/filter_cases.txtar"

type fixtureCase struct {
	input    string
	selector string
	expected string
}

func loadFilterCases(t *testing.T) map[string]*fixtureCase {
	t.Helper()
	archive, parseError := txtar.ParseFile(filterCasesArchivePath)
	if parseError != nil {
		t.Fatalf("reading %s: %v", filterCasesArchivePath, parseError)
	}

	cases := map[string]*fixtureCase{}
	for _, file := range archive.Files {
		caseName, fileName := path.Split(file.Name)
		caseName = strings.TrimSuffix(caseName, "/")
		if caseName == "" {
			t.Fatalf("archive file %q is not inside a case directory", file.Name)
		}
		entry := cases[caseName]
		if entry == nil {
			entry = &fixtureCase{}
			cases[caseName] = entry
		}
		switch fileName {
		case "input.rs":
			entry.input = string(file.Data)
		case "selector":
			entry.selector = strings.TrimSpace(string(file.Data))
		case "expected.rs":
			entry.expected = string(file.Data)
		default:
			t.Fatalf("archive file %q has an unknown role", file.Name)
		}
	}
	return cases
}

func TestFilterExpandedSourceGoldenCases(t *testing.T) {
	for caseName, entry := range loadFilterCases(t) {
		t.Run(caseName, func(t *testing.T) {
			if entry.input == "" || entry.expected == "" {
				t.Fatalf("case %q is missing input or expected output", caseName)
			}
			var selector *types.Selector
			if entry.selector != "" {
				selector = mustParseSelector(t, entry.selector)
			}
			outcome, filterError := FilterExpandedSource(entry.input, selector)
			if filterError != nil {
				t.Fatalf("FilterExpandedSource error: %v", filterError)
			}
			if outcome.Text != entry.expected {
				t.Fatalf("unexpected filtered text:\nexpected %q\ngot      %q", entry.expected, outcome.Text)
			}
		})
	}
}
