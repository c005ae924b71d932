package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Category is the classification bucket assigned to a single ingredient phrase
type Category int

const (
	// CategoryUnidentified matched neither the regulated substances nor the common ingredients
	CategoryUnidentified Category = iota
	// CategoryRegulatedNonCommon is a regulated substance that is not an everyday food
	CategoryRegulatedNonCommon
	// CategoryRegulatedCommon is a regulated substance that is also an everyday food (salt, sugar, citric acid)
	CategoryRegulatedCommon
	// CategoryCommonOnly is a common whole or minimally-processed food
	CategoryCommonOnly
)

var categoryNames = map[Category]string{
	CategoryUnidentified:       "unidentified",
	CategoryRegulatedNonCommon: "regulated_non_common",
	CategoryRegulatedCommon:    "regulated_common",
	CategoryCommonOnly:         "common_only",
}

// String returns the wire name of the category
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// IsRegulated reports whether the category came from the regulated-substance alias map
func (c Category) IsRegulated() bool {
	return c == CategoryRegulatedNonCommon || c == CategoryRegulatedCommon
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	name, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for category, name := range categoryNames {
		if name == want {
			*c = category
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", string(text))
}

// CompletenessLevel is the qualitative bucket of a completeness score
type CompletenessLevel string

const (
	CompletenessHigh   CompletenessLevel = "High"
	CompletenessMedium CompletenessLevel = "Medium"
	CompletenessLow    CompletenessLevel = "Low"
)

// ProcessingLevel is the 1-4 processing estimate, loosely modeled on NOVA groups
type ProcessingLevel int

const (
	ProcessingMinimal   ProcessingLevel = 1
	ProcessingCulinary  ProcessingLevel = 2
	ProcessingProcessed ProcessingLevel = 3
	ProcessingUltra     ProcessingLevel = 4
)

// ProcessingDisclaimer accompanies every processing estimate shown to users
const ProcessingDisclaimer = "Heuristic estimate based on ingredient matching; not a certified NOVA classification."

// IngredientPhrase is one segmented phrase and the category it was assigned
type IngredientPhrase struct {
	Original   string   `json:"original"`
	Normalized string   `json:"normalized"`
	Category   Category `json:"category"`
	// MatchedName is the canonical display name (regulated) or preferred casing (common); empty when unidentified
	MatchedName string `json:"matchedName,omitempty"`
}

// TechnicalEffect is one "used for" phrase of a regulated substance and its grouped category
type TechnicalEffect struct {
	Phrase   string `json:"phrase"`
	Category string `json:"category"`
}

// SubstanceDetail describes a matched regulated substance for display
type SubstanceDetail struct {
	Name             string            `json:"name"`
	Common           bool              `json:"common"`
	EffectCategories []string          `json:"effectCategories,omitempty"`
	Effects          []TechnicalEffect `json:"effects,omitempty"`
	OtherNames       []string          `json:"otherNames,omitempty"`
	CASNumber        string            `json:"casNumber,omitempty"`
}

// ClassificationResult is the outcome of classifying one ingredient declaration.
// The four name lists are deduplicated and kept in first-seen order.
type ClassificationResult struct {
	RegulatedNonCommon []string `json:"regulatedNonCommon"`
	RegulatedCommon    []string `json:"regulatedCommon"`
	CommonOnly         []string `json:"commonOnly"`
	Unidentified       []string `json:"unidentified"`

	Phrases    []IngredientPhrase `json:"phrases"`
	Substances []SubstanceDetail  `json:"substances,omitempty"`

	CompletenessScore float64           `json:"completenessScore"`
	CompletenessLevel CompletenessLevel `json:"completenessLevel"`

	ProcessingLevel       ProcessingLevel `json:"processingLevel"`
	ProcessingDescription string          `json:"processingDescription"`
	Disclaimer            string          `json:"disclaimer"`
}

// Clone returns a copy of r that shares no slices with it.
func (r ClassificationResult) Clone() ClassificationResult {
	r.RegulatedNonCommon = slices.Clone(r.RegulatedNonCommon)
	r.RegulatedCommon = slices.Clone(r.RegulatedCommon)
	r.CommonOnly = slices.Clone(r.CommonOnly)
	r.Unidentified = slices.Clone(r.Unidentified)
	r.Phrases = slices.Clone(r.Phrases)
	if r.Substances != nil {
		substances := make([]SubstanceDetail, len(r.Substances))
		for i, d := range r.Substances {
			d.EffectCategories = slices.Clone(d.EffectCategories)
			d.Effects = slices.Clone(d.Effects)
			d.OtherNames = slices.Clone(d.OtherNames)
			substances[i] = d
		}
		r.Substances = substances
	}
	return r
}

// TotalPhrases returns the number of phrases that were classified
func (r ClassificationResult) TotalPhrases() int {
	return len(r.Phrases)
}
