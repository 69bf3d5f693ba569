package reminder

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// isBlank reports whether s has nothing but whitespace. Blank text never
// becomes a reminder.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// normalizeText drops surrounding whitespace and puts the rest in NFC form,
// so visually identical input is stored byte-identical. Only applied when
// the store was built WithTextNormalization.
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
