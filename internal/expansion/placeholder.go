// Package expansion filters raw macro-expanded Rust source: it substitutes
// the crate-root placeholder, strips compiler-injected comments and narrows
// the output to selected items.
package expansion

import "strings"

const (
	// crateRootToken is the special path prefix the compiler emits inside
	// expanded macros. External formatters cannot parse it.
	crateRootToken = "$crate"

	// crateRootPlaceholder stands in for the token while the text travels
	// through the parser and the formatter. It occupies the same number of
	// display columns as the token so column-sensitive formatting survives
	// the round trip.
	crateRootPlaceholder = "Ξcrate"
)

// ReplaceCrateRootToken substitutes every crate-root token with the
// fixed-width placeholder ahead of parsing and formatting.
func ReplaceCrateRootToken(text string) string {
	return strings.ReplaceAll(text, crateRootToken, crateRootPlaceholder)
}

// RestoreCrateRootToken reverses ReplaceCrateRootToken on the final text.
func RestoreCrateRootToken(text string) string {
	return strings.ReplaceAll(text, crateRootPlaceholder, crateRootToken)
}
