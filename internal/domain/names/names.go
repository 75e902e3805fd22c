// Package names turns free-form player names into canonical lookup keys.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dropped matches the runes that never reach a key.
var dropped = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII || unicode.IsSpace(r) })

// Normalize folds a display name into its canonical key: NFKD decomposition,
// every non-ASCII rune dropped, lower-cased, whitespace removed.
// Two names that differ only in accents, case, or spacing share a key.
func Normalize(text string) string {
	// Chains carry state, so each call builds its own.
	t := transform.Chain(norm.NFKD, runes.Remove(dropped), runes.Map(unicode.ToLower))
	folded, _, err := transform.String(t, text)
	if err != nil {
		// None of the transformers reject input; a failure means no usable key.
		return ""
	}
	return folded
}

// Surname returns the canonical form of the last whitespace-delimited token of text,
// or "" when text is blank.
func Surname(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return Normalize(fields[len(fields)-1])
}
