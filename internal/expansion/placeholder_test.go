package expansion

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCrateRootTokenRoundTrip(t *testing.T) {
	original := "impl $crate::fmt::Debug for Widget { $crate::ok!() }"
	replaced := ReplaceCrateRootToken(original)
	if strings.Contains(replaced, crateRootToken) {
		t.Fatalf("replacement left a crate-root token behind: %q", replaced)
	}
	if strings.Count(replaced, crateRootPlaceholder) != 2 {
		t.Fatalf("expected two placeholders, got %q", replaced)
	}
	if restored := RestoreCrateRootToken(replaced); restored != original {
		t.Fatalf("round trip changed the text:\nbefore %q\nafter  %q", original, restored)
	}
}

func TestCrateRootPlaceholderWidth(t *testing.T) {
	tokenWidth := utf8.RuneCountInString(crateRootToken)
	placeholderWidth := utf8.RuneCountInString(crateRootPlaceholder)
	if tokenWidth != placeholderWidth {
		t.Fatalf("placeholder occupies %d columns, token occupies %d", placeholderWidth, tokenWidth)
	}
}

func TestReplaceCrateRootTokenWithoutOccurrences(t *testing.T) {
	text := "fn plain() {}"
	if replaced := ReplaceCrateRootToken(text); replaced != text {
		t.Fatalf("text without the token changed: %q", replaced)
	}
}
