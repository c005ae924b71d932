package usecase

import (
	"math"

	"github.com/foodtrust/backend/internal/domain"
)

// Completeness thresholds, in percent
const (
	highCompletenessThreshold   = 90.0
	mediumCompletenessThreshold = 70.0
)

// Processing descriptions
const (
	descUltraProcessed     = "Ultra-processed"
	descUltraUnidentified  = "Ultra-processed, unidentified ingredients"
	descProcessed          = "Processed"
	descCulinaryIngredient = "Processed culinary ingredient"
	descMinimallyProcessed = "Minimally processed"
	descNoIngredients      = "Minimally processed (no ingredients listed)"
	descProcessedAmbiguous = "Processed (ambiguous)"
)

// More distinct unidentified ingredients than this is treated as ultra-processed
const maxUnidentifiedBeforeUltra = 2

// CategoryCounts holds the number of distinct entries found per category.
type CategoryCounts struct {
	RegulatedNonCommon int
	RegulatedCommon    int
	CommonOnly         int
	Unidentified       int
}

// Completeness returns the share of phrases that were categorized, in percent
// rounded to two decimals, and its level. Zero phrases score 100.
func Completeness(categorized, total int) (float64, domain.CompletenessLevel) {
	score := 100.0
	if total > 0 {
		score = float64(categorized) / float64(total) * 100
		score = math.Round(score*100) / 100
		score = math.Max(0, math.Min(100, score))
	}

	switch {
	case score >= highCompletenessThreshold:
		return score, domain.CompletenessHigh
	case score >= mediumCompletenessThreshold:
		return score, domain.CompletenessMedium
	default:
		return score, domain.CompletenessLow
	}
}

// EstimateProcessing applies the processing decision table; the first
// matching rule wins. The result is a heuristic, not a certified NOVA group.
func EstimateProcessing(c CategoryCounts) (domain.ProcessingLevel, string) {
	onlyCommon := c.RegulatedCommon == 0 && c.Unidentified == 0
	onlyRegulatedCommon := c.CommonOnly == 0 && c.Unidentified == 0

	switch {
	case c.RegulatedNonCommon > 0:
		return domain.ProcessingUltra, descUltraProcessed
	case c.Unidentified > maxUnidentifiedBeforeUltra:
		return domain.ProcessingUltra, descUltraUnidentified
	case c.CommonOnly > 0 && c.RegulatedCommon > 0,
		c.CommonOnly > 1 && onlyCommon:
		return domain.ProcessingProcessed, descProcessed
	case c.RegulatedCommon > 0 && onlyRegulatedCommon:
		return domain.ProcessingCulinary, descCulinaryIngredient
	case c.CommonOnly > 0 && onlyCommon:
		return domain.ProcessingMinimal, descMinimallyProcessed
	case c == (CategoryCounts{}):
		return domain.ProcessingMinimal, descNoIngredients
	default:
		return domain.ProcessingProcessed, descProcessedAmbiguous
	}
}
