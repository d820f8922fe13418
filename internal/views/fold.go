package views

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldText lowercases a string and strips diacritics so "José" matches
// "jose". Transformers carry state, so each call builds its own chain.
func foldText(value string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// containsFolded reports whether needle occurs in haystack after folding.
// An empty needle matches everything.
func containsFolded(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(foldText(haystack), foldText(needle))
}
