package reference

import (
	"regexp"
	"sort"
	"strings"

	"github.com/foodtrust/backend/internal/domain"
)

// Effect categories shown for regulated substances
const (
	EffectFlavor       = "Flavor & Aroma"
	EffectTexture      = "Texture & Structure"
	EffectPreservation = "Preservation"
	EffectNutrient     = "Nutrient/Sweetener"
	EffectColor        = "Color"
	EffectProcessing   = "Processing Aid"
	EffectThickener    = "Thickener"
	EffectOther        = "Other"
)

var effectKeywords = map[string]string{
	"FLAVORING AGENT":             EffectFlavor,
	"FLAVOR ENHANCER":             EffectFlavor,
	"FLAVORING AGENT OR ADJUVANT": EffectFlavor,

	"STABILIZER":                    EffectTexture,
	"THICKENER":                     EffectTexture,
	"EMULSIFIER":                    EffectTexture,
	"EMULSIFIER OR EMULSIFIER SALT": EffectTexture,
	"TEXTURIZER":                    EffectTexture,
	"FIRMING AGENT":                 EffectTexture,
	"DOUGH STRENGTHENER":            EffectTexture,
	"MASTICATORY SUBSTANCE":         EffectTexture,
	"GELLING AGENT":                 EffectTexture,

	"ANTIMICROBIAL": EffectPreservation,
	"ANTIOXIDANT":   EffectPreservation,
	"PRESERVATIVE":  EffectPreservation,
	"CURING":        EffectPreservation,
	"PICKLING":      EffectPreservation,

	"NUTRIENT SUPPLEMENT": EffectNutrient,
	"SWEETENER":           EffectNutrient,
	"CORN SYRUP":          EffectNutrient,

	"COLOR":                     EffectColor,
	"COLOR OR COLORING ADJUNCT": EffectColor,

	"PROCESSING AID":                      EffectProcessing,
	"FORMULATION AID":                     EffectProcessing,
	"ANTICAKING":                          EffectProcessing,
	"ANTICAKING AGENT OR FREE-FLOW AGENT": EffectProcessing,
	"FREE-FLOW AGENT":                     EffectProcessing,
	"SOLVENT":                             EffectProcessing,
	"SOLVENT OR VEHICLE":                  EffectProcessing,
	"VEHICLE":                             EffectProcessing,
	"PH CONTROL":                          EffectProcessing,
	"PH CONTROL AGENT":                    EffectProcessing,
	"ENZYME":                              EffectProcessing,
	"SURFACE-ACTIVE":                      EffectProcessing,
	"SURFACE-FINISHING":                   EffectProcessing,
	"LUBRICANT":                           EffectProcessing,
	"RELEASE AGENT":                       EffectProcessing,
	"DRYING AGENT":                        EffectProcessing,
	"LEAVENING AGENT":                     EffectProcessing,
	"SEQUESTRANT":                         EffectProcessing,
	"MALTING":                             EffectProcessing,
	"FERMENTING AID":                      EffectProcessing,
	"FLOUR TREATING":                      EffectProcessing,
	"BOILER WATER ADDITIVE":               EffectProcessing,
	"PROPELLANT":                          EffectProcessing,
	"WASHING":                             EffectProcessing,
	"OXIDIZING":                           EffectProcessing,
	"REDUCING AGENT":                      EffectProcessing,
	"FUMIGANT":                            EffectProcessing,
	"SYNERGIST":                           EffectProcessing,
	"FREEZING":                            EffectProcessing,
	"COOLING AGENT":                       EffectProcessing,
	"DIRECT CONTACT":                      EffectProcessing,
	"TRACER":                              EffectProcessing,
	"PROCESSING":                          EffectProcessing,

	"MALTODEXTRIN": EffectThickener,
}

// effectKeywordOrder lists the keywords longest first so that
// "FLAVORING AGENT OR ADJUVANT" wins over "FLAVORING AGENT".
var effectKeywordOrder = func() []string {
	keys := make([]string, 0, len(effectKeywords))
	for k := range effectKeywords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var effectSeparatorPattern = regexp.MustCompile(`(?i),\s*|<br\s*/?>`)

// ParseEffects splits a raw "used for" description into individual effects
// and returns them with the distinct categories in first-seen order.
func ParseEffects(raw string) ([]domain.TechnicalEffect, []string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var (
		effects    []domain.TechnicalEffect
		categories []string
		seen       = make(map[string]struct{})
	)
	for _, part := range effectSeparatorPattern.Split(raw, -1) {
		phrase := strings.TrimSpace(part)
		if phrase == "" {
			continue
		}
		category := effectCategory(phrase)
		effects = append(effects, domain.TechnicalEffect{Phrase: phrase, Category: category})
		if _, ok := seen[category]; !ok {
			seen[category] = struct{}{}
			categories = append(categories, category)
		}
	}
	return effects, categories
}

func effectCategory(phrase string) string {
	upper := strings.ToUpper(phrase)
	for _, keyword := range effectKeywordOrder {
		if strings.Contains(upper, keyword) {
			return effectKeywords[keyword]
		}
	}
	return EffectOther
}
