package helper

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText lowercases text, strips accents and collapses whitespace.
// "  Genève   Université " becomes "geneve universite".
func NormalizeText(text string) string {
	text = StripAccents(strings.ToLower(text))
	return strings.Join(strings.Fields(text), " ")
}

// StripAccents removes combining marks after NFD decomposition
func StripAccents(text string) string {
	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return norm.NFC.String(b.String())
}

// FoldText is the comparison form used for annotations: trimmed and lowercased.
func FoldText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// CountWords counts whitespace separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}
