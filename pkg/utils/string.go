package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// CleanText trims s and collapses inner whitespace runs to single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateString shortens s to at most maxWidth display columns.
func TruncateString(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "...")
}
