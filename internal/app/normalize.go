package app

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize canonicalizes an answer for comparison: surrounding whitespace is
// trimmed and the text is lowercased with language-neutral casing rules.
func Normalize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	// Casers carry state; build one per call so Normalize stays goroutine-safe.
	return cases.Lower(language.Und).String(trimmed)
}
