package types

import (
	"fmt"
	"strings"
)

const (
	selectorPathSeparator      = "::"
	selectorDotSeparator       = "."
	selectorMacroSuffix        = "!"
	emptySelectorMessage       = "empty item selector"
	invalidSegmentFormat       = "invalid selector segment '%s' in '%s'"
	rawIdentifierPrefix        = "r#"
	selectorCanonicalSeparator = "::"
)

// SelectorSegment is one path element of an item selector. MacroOnly marks a
// segment written with a trailing '!' which restricts matching to macros so a
// macro and a function sharing a name can be told apart.
type SelectorSegment struct {
	Name      string
	MacroOnly bool
}

// Selector identifies a single item inside expanded output as an ordered
// path of segments from the crate root toward the item.
type Selector struct {
	Segments []SelectorSegment
}

// ParseSelector parses a dotted or ::-separated item path. Each segment must
// be a valid identifier, optionally suffixed with '!'.
func ParseSelector(input string) (*Selector, error) {
	normalized := strings.ReplaceAll(input, selectorPathSeparator, selectorDotSeparator)
	pieces := strings.Split(normalized, selectorDotSeparator)
	selector := &Selector{}
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if trimmed == "" {
			return nil, fmt.Errorf(emptySelectorMessage)
		}
		segment := SelectorSegment{Name: trimmed}
		if strings.HasSuffix(trimmed, selectorMacroSuffix) {
			segment.Name = strings.TrimSuffix(trimmed, selectorMacroSuffix)
			segment.MacroOnly = true
		}
		segment.Name = strings.TrimPrefix(segment.Name, rawIdentifierPrefix)
		if !isIdentifier(segment.Name) {
			return nil, fmt.Errorf(invalidSegmentFormat, piece, input)
		}
		selector.Segments = append(selector.Segments, segment)
	}
	if len(selector.Segments) == 0 {
		return nil, fmt.Errorf(emptySelectorMessage)
	}
	return selector, nil
}

// String renders the selector in canonical :: notation.
func (selector *Selector) String() string {
	rendered := make([]string, 0, len(selector.Segments))
	for _, segment := range selector.Segments {
		if segment.MacroOnly {
			rendered = append(rendered, segment.Name+selectorMacroSuffix)
			continue
		}
		rendered = append(rendered, segment.Name)
	}
	return strings.Join(rendered, selectorCanonicalSeparator)
}

// isIdentifier reports whether the candidate is a plausible Rust identifier.
func isIdentifier(candidate string) bool {
	if candidate == "" {
		return false
	}
	for index, character := range candidate {
		letter := character == '_' ||
			(character >= 'a' && character <= 'z') ||
			(character >= 'A' && character <= 'Z')
		digit := character >= '0' && character <= '9'
		if index == 0 && !letter {
			return false
		}
		if !letter && !digit {
			return false
		}
	}
	return true
}
