package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foodtrust/backend/internal/domain"
)

func TestClassifyPhrase(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		name         string
		phrase       string
		wantCategory domain.Category
		wantName     string
	}{
		{"regulated non-common alias", "red 40", domain.CategoryRegulatedNonCommon, "FD&C Red No. 40"},
		{"normalized label spelling", "fd&c red no 40", domain.CategoryRegulatedNonCommon, "FD&C Red No. 40"},
		{"regulated common by intersection", "citric acid", domain.CategoryRegulatedCommon, "Citric acid"},
		{"regulated common by explicit list", "salt", domain.CategoryRegulatedCommon, "Sodium chloride"},
		{"regulated inside longer phrase", "sea salt", domain.CategoryRegulatedCommon, "Sodium chloride"},
		{"alias map takes priority over common set", "water with citric acid", domain.CategoryRegulatedCommon, "Citric acid"},
		{"common with display casing", "whole wheat flour", domain.CategoryCommonOnly, "Whole Wheat Flour"},
		{"longest window beats leftmost shorter", "organic paprika olive oil", domain.CategoryCommonOnly, "Olive Oil"},
		{"longest common window", "enriched whole wheat flour", domain.CategoryCommonOnly, "Whole Wheat Flour"},
		{"leftmost wins among equal lengths", "turmeric paprika", domain.CategoryCommonOnly, "Turmeric"},
		{"unidentified", "xanthan gum", domain.CategoryUnidentified, ""},
		{"empty phrase", "", domain.CategoryUnidentified, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyPhrase(tt.phrase, idx)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantCategory.IsRegulated(), got.Substance != nil)
		})
	}
}

func TestClassifyPhrase_SameSubstanceForLabelAndAlias(t *testing.T) {
	idx := testIndex()

	fromLabel := ClassifyPhrase("fd&c red no 40", idx)
	fromAlias := ClassifyPhrase("red 40", idx)
	assert.Same(t, fromLabel.Substance, fromAlias.Substance)
}

func TestClassifyPhrase_NilIndex(t *testing.T) {
	got := ClassifyPhrase("water", nil)
	assert.Equal(t, domain.CategoryUnidentified, got.Category)
}
