// Package match implements the question-matching engine: text normalization,
// keyword extraction, similarity scoring, and the staged lookup cascade that
// resolves a free-text question to a stored answer.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks decomposes compatibility characters (NFKD) and drops combining
// marks, so "Déjà" and full-width "Ｄｅｊａ" strip down to the same key.
var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes raw text into the comparable form used as the sole
// search key: lowercase, every non-letter non-digit rune replaced by a space,
// whitespace runs collapsed, ends trimmed. The same function runs at write
// time and at query time; if the two ever diverge, exact-match lookup silently
// degrades to fuzzy-only.
//
// Idempotent: Normalize(Normalize(s)) == Normalize(s). Never fails: a
// transform error falls back to a plain lowercase+strip pass, because
// normalization must never block a reply.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	folded, _, err := transform.String(foldMarks, lower)
	if err != nil {
		folded = lower
	}
	return collapseSpaces(stripToSpaces(folded))
}

// NormalizeCompact is the alternate comparison key: Normalize with all
// remaining whitespace and underscores removed. Recovers records whose
// normalization diverged only in spacing conventions.
func NormalizeCompact(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' {
			return -1
		}
		return r
	}, Normalize(text))
}

// stripToSpaces destroys punctuation and symbols: anything that is not a
// letter, digit, or whitespace becomes a single space.
func stripToSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
}

// collapseSpaces squeezes whitespace runs to a single space and trims.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
