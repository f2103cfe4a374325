// Package textnorm provides the text normalization used when comparing
// values extracted from different sources of the same report. Scanned
// documents mix full-width and half-width characters and scatter whitespace
// inside cells, so all comparisons in this module go through these helpers.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Fold collapses all whitespace and folds full-width characters to their
// half-width equivalents. It is the canonical form for value comparison.
func Fold(s string) string {
	folded := width.Narrow.String(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FoldLoose additionally strips punctuation that OCR tends to drop or
// substitute (quotes, brackets, colons, dots between characters). Used for
// header matching where punctuation carries no meaning.
func FoldLoose(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Equal reports whether two values are the same after folding.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// TrimCell trims the surrounding whitespace a table extractor leaves on a
// cell, including full-width spaces.
func TrimCell(s string) string {
	return strings.TrimFunc(s, unicode.IsSpace)
}
