package expansion

import (
	"fmt"

	"github.com/tyemirov/cargo-expand/internal/types"
)

const noSuchItemMessageFormat = "no such item: %s"

// NoSuchItemError reports a selector that matched nothing in the expanded
// source. It names the unresolved selector for the diagnostic.
type NoSuchItemError struct {
	Selector string
}

// Error names the unresolved selector.
func (noSuchItemError *NoSuchItemError) Error() string {
	return fmt.Sprintf(noSuchItemMessageFormat, noSuchItemError.Selector)
}

// Outcome is the result of the filter stage. Degraded marks a best-effort
// pass-through: the input failed to parse and Text is the input unchanged.
type Outcome struct {
	Text     string
	Degraded bool
}

// FilterExpandedSource sanitizes expanded source and, when a selector is
// given, narrows it to the matching items. Parse failures degrade to the
// unmodified input; a selector that matches nothing is a hard error.
func FilterExpandedSource(text string, selector *types.Selector) (Outcome, error) {
	file, parseError := ParseFile([]byte(text))
	if parseError != nil {
		return Outcome{Text: text, Degraded: true}, nil
	}
	if selector == nil {
		return Outcome{Text: file.RenderSanitized()}, nil
	}
	matched := SelectItems(file.Items(), *selector)
	if len(matched) == 0 {
		return Outcome{}, &NoSuchItemError{Selector: selector.String()}
	}
	return Outcome{Text: file.RenderItems(matched)}, nil
}

// SelectItems returns every item matching the selector, in original order.
// All matches are kept: a selector that is ambiguous across nesting depths
// selects each of the same-named items.
func SelectItems(items []Item, selector types.Selector) []Item {
	var matched []Item
	for _, item := range items {
		if selectorMatchesItem(selector, item) {
			matched = append(matched, item)
		}
	}
	return matched
}

// selectorMatchesItem matches the selector as a suffix of the item's path:
// the final segment must equal the item's simple name and, walking outward,
// each earlier segment must equal the corresponding enclosing module. Extra
// outer segments beyond the available nesting are ignored.
func selectorMatchesItem(selector types.Selector, item Item) bool {
	segments := selector.Segments
	lastSegment := segments[len(segments)-1]
	if lastSegment.Name != item.SimpleName {
		return false
	}
	if lastSegment.MacroOnly && !item.MacroForm {
		return false
	}

	moduleIndex := len(item.ModulePath) - 1
	for segmentIndex := len(segments) - 2; segmentIndex >= 0 && moduleIndex >= 0; segmentIndex-- {
		if segments[segmentIndex].Name != item.ModulePath[moduleIndex] {
			return false
		}
		moduleIndex--
	}
	return true
}
