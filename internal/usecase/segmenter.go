package usecase

import (
	"regexp"
	"strings"
)

// Delimiters between phrases. Inside a parenthetical group the word "and"
// also separates sub-ingredients: "spices (paprika and turmeric)".
var (
	mainDelimiterPattern  = regexp.MustCompile(`[,;]`)
	groupDelimiterPattern = regexp.MustCompile(`(?i),|;|\band\b`)
)

// Segment splits a cleaned ingredient declaration into candidate phrases.
//
// Parenthetical groups are extracted first and the remaining text is split on
// commas and semicolons. Group contents are segmented the same way, with "and"
// as an extra delimiter, and their phrases follow the phrases of the enclosing
// text. Stray closing parentheses are dropped; the contents of an unclosed group
// become phrases of the enclosing text.
//
// Examples:
//   - Segment("Water, Sugar; Salt") -> ["Water", "Sugar", "Salt"]
//   - Segment("Spices (Paprika and Turmeric), Salt") -> ["Spices", "Salt", "Paprika", "Turmeric"]
func Segment(text string) []string {
	return segment(text, mainDelimiterPattern)
}

func segment(text string, delimiters *regexp.Regexp) []string {
	outer, groups := extractGroups(text)

	var phrases []string
	for _, part := range delimiters.Split(outer, -1) {
		if p := strings.TrimSpace(part); p != "" {
			phrases = append(phrases, p)
		}
	}
	for _, group := range groups {
		phrases = append(phrases, segment(group, groupDelimiterPattern)...)
	}
	return phrases
}

// extractGroups removes every top-level parenthetical group from text and
// returns the remaining text along with the inner text of each group.
// Nested parentheses stay inside their enclosing group.
func extractGroups(text string) (string, []string) {
	var (
		outer  strings.Builder
		inner  strings.Builder
		groups []string
		depth  int
	)
	for _, r := range text {
		switch {
		case r == '(':
			if depth > 0 {
				inner.WriteRune(r)
			}
			depth++
		case r == ')' && depth == 0:
			outer.WriteRune(' ')
		case r == ')':
			depth--
			if depth == 0 {
				groups = append(groups, inner.String())
				inner.Reset()
				outer.WriteRune(' ')
			} else {
				inner.WriteRune(r)
			}
		case depth > 0:
			inner.WriteRune(r)
		default:
			outer.WriteRune(r)
		}
	}
	if depth > 0 {
		outer.WriteRune(',')
		outer.WriteString(inner.String())
	}
	return outer.String(), groups
}
