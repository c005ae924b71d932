package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foodtrust/backend/internal/domain"
)

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name        string
		categorized int
		total       int
		wantScore   float64
		wantLevel   domain.CompletenessLevel
	}{
		{"no phrases", 0, 0, 100, domain.CompletenessHigh},
		{"all categorized", 4, 4, 100, domain.CompletenessHigh},
		{"high boundary", 9, 10, 90, domain.CompletenessHigh},
		{"medium boundary", 7, 10, 70, domain.CompletenessMedium},
		{"rounded to two decimals", 2, 3, 66.67, domain.CompletenessLow},
		{"nothing categorized", 0, 5, 0, domain.CompletenessLow},
		{"clamped above", 6, 5, 100, domain.CompletenessHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := Completeness(tt.categorized, tt.total)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestEstimateProcessing(t *testing.T) {
	tests := []struct {
		name      string
		counts    CategoryCounts
		wantLevel domain.ProcessingLevel
		wantDesc  string
	}{
		{"no ingredients", CategoryCounts{}, domain.ProcessingMinimal, descNoIngredients},
		{"regulated non-common wins over everything", CategoryCounts{RegulatedNonCommon: 1, CommonOnly: 3}, domain.ProcessingUltra, descUltraProcessed},
		{"more than two unidentified", CategoryCounts{Unidentified: 3, CommonOnly: 1}, domain.ProcessingUltra, descUltraUnidentified},
		{"two unidentified is not enough", CategoryCounts{Unidentified: 2}, domain.ProcessingProcessed, descProcessedAmbiguous},
		{"common and regulated common", CategoryCounts{CommonOnly: 1, RegulatedCommon: 1}, domain.ProcessingProcessed, descProcessed},
		{"common and regulated common with some unidentified", CategoryCounts{CommonOnly: 1, RegulatedCommon: 1, Unidentified: 2}, domain.ProcessingProcessed, descProcessed},
		{"several common only", CategoryCounts{CommonOnly: 2}, domain.ProcessingProcessed, descProcessed},
		{"only regulated common", CategoryCounts{RegulatedCommon: 2}, domain.ProcessingCulinary, descCulinaryIngredient},
		{"single common only", CategoryCounts{CommonOnly: 1}, domain.ProcessingMinimal, descMinimallyProcessed},
		{"common with unidentified is ambiguous", CategoryCounts{CommonOnly: 2, Unidentified: 1}, domain.ProcessingProcessed, descProcessedAmbiguous},
		{"regulated common with unidentified is ambiguous", CategoryCounts{RegulatedCommon: 1, Unidentified: 1}, domain.ProcessingProcessed, descProcessedAmbiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, desc := EstimateProcessing(tt.counts)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}
