// Package normalizer turns raw listings into output records: it derives
// comparison keys from free text, resolves vehicle titles to a catalog
// brand and model, and assembles the flat record for each listing.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison key for s: separators (whitespace and
// hyphens) are deleted, letters are lower-cased and the result is composed
// to NFC. "Land Rover", "land-rover" and "LandRover" share one key.
//
// Normalize is pure and idempotent.
func Normalize(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}

		return r
	}, s)

	// Compose before lower-casing so a capital built from a base letter and
	// a combining mark is folded too. Lower-casing can split a composed
	// letter into a pair that composes differently, so compose again.
	return norm.NFC.String(strings.ToLower(norm.NFC.String(stripped)))
}

func isSeparator(r rune) bool {
	switch r {
	case '-', '‐', '‑':
		return true
	}

	return unicode.IsSpace(r)
}
