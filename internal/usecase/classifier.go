package usecase

import (
	"strings"

	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/reference"
)

// Match is the classification of one normalized phrase.
type Match struct {
	Category domain.Category
	// Name is the substance display name or the common ingredient's preferred
	// casing. Empty when unidentified.
	Name      string
	Substance *reference.Substance
}

// ClassifyPhrase matches a normalized phrase against idx.
//
// Every contiguous run of tokens is tried, longest first and leftmost first
// among runs of equal length, against the regulated alias map. Only when no
// run names a regulated substance is the same search repeated against the
// common-ingredient set.
func ClassifyPhrase(phrase string, idx *reference.Index) Match {
	tokens := strings.Fields(phrase)
	if len(tokens) == 0 || idx == nil {
		return Match{Category: domain.CategoryUnidentified}
	}

	if s, ok := longestWindow(tokens, idx.LookupAlias); ok {
		category := domain.CategoryRegulatedNonCommon
		if s.Common {
			category = domain.CategoryRegulatedCommon
		}
		return Match{Category: category, Name: s.Name, Substance: s}
	}

	if display, ok := longestWindow(tokens, idx.LookupCommon); ok {
		return Match{Category: domain.CategoryCommonOnly, Name: display}
	}

	return Match{Category: domain.CategoryUnidentified}
}

func longestWindow[T any](tokens []string, lookup func(string) (T, bool)) (T, bool) {
	for size := len(tokens); size > 0; size-- {
		for start := 0; start+size <= len(tokens); start++ {
			if v, ok := lookup(strings.Join(tokens[start:start+size], " ")); ok {
				return v, true
			}
		}
	}
	var zero T
	return zero, false
}
