package chunker

import (
	"strings"
	"unicode/utf8"
)

// Normalize collapses all whitespace (newlines included) to single spaces and lower-cases the text.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Preview shortens text to at most maxBytes, cutting on a rune boundary, and marks the cut with "...".
func Preview(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
