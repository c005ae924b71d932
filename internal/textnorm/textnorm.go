// Package textnorm canonicalizes ingredient declarations and reference names.
//
// Both sides of a dictionary lookup must go through the same functions: the
// reference index normalizes substance names with Name, and the classifier
// normalizes each segmented phrase with Name as well. Normalize applies the
// full list-level pipeline to a raw declaration.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Compiled patterns, applied in the order they are declared
var (
	// "Ingredients:", "Ingredient list:", "Contains:" at the start of a declaration
	leadingLabelPattern = regexp.MustCompile(`(?i)^\s*(?:ingredients?\s+list|ingredients?|contains)\b\s*:?\s*`)

	andOrPattern = regexp.MustCompile(`(?i)\s+and/or\s+`)

	// Parenthetical technical descriptors such as "(color)" or "(vitamin b1)"
	descriptorPattern     = regexp.MustCompile(`(?i)\s*\(\s*(?:color|flavour|flavor|emulsifier|stabilizer|thickener|preservative|antioxidant|acidifier|sweetener|gelling agent|firming agent|nutrient|vitamin [a-z0-9]+)\s*\)`)
	bracketVitaminPattern = regexp.MustCompile(`(?i)\s*\[\s*vitamin [a-z0-9]+\s*\]`)

	whitespacePattern   = regexp.MustCompile(`\s+`)
	numberAbbrevPattern = regexp.MustCompile(`\bno\.\s*`)

	// Characters kept in a canonical name; everything else is dropped
	nameDisallowedPattern = regexp.MustCompile(`[^a-z0-9\s&.\-#()]`)
)

const trailingPunctuation = `.,'"`

var foldAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Clean performs the structural cleanup of a raw declaration: leading label,
// "and/or" lists and parenthetical technical descriptors. Case and
// punctuation are preserved so the segmenter can keep original phrase text.
func Clean(raw string) string {
	s := leadingLabelPattern.ReplaceAllString(raw, "")
	s = andOrPattern.ReplaceAllString(s, ", ")
	s = descriptorPattern.ReplaceAllString(s, "")
	s = bracketVitaminPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Normalize runs the full declaration pipeline: Clean, lowercase, whitespace
// collapse, "no." folding and trailing punctuation removal.
func Normalize(raw string) string {
	return Phrase(Clean(raw))
}

// Phrase normalizes one segmented phrase: accent and case folding, whitespace
// collapse, "no." folding and trailing punctuation removal. Every other
// character is kept, so a phrase in any script stays non-empty.
func Phrase(s string) string {
	return finish(fold(s))
}

// Name canonicalizes a single name or phrase into a dictionary key. Characters
// outside the key alphabet are dropped, so the key may be empty.
// Examples:
//   - Name("FD&C Red No. 40") -> "fd&c red no 40"
//   - Name("  Crème  Fraîche. ") -> "creme fraiche"
func Name(s string) string {
	s = fold(s)
	s = nameDisallowedPattern.ReplaceAllString(s, "")
	return finish(s)
}

func fold(s string) string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

func finish(s string) string {
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = numberAbbrevPattern.ReplaceAllString(s, "no ")
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimSpace(strings.TrimRight(s, trailingPunctuation))
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
