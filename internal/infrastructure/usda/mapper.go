package usda

import (
	"strconv"
	"strings"

	"github.com/foodtrust/backend/internal/domain"
)

// MapToProductAnalysis copies the origin metadata of a USDA food into an
// analysis for gtin. Classification is filled in by the caller.
func MapToProductAnalysis(gtin string, food *domain.USDAFood) domain.ProductAnalysis {
	analysis := domain.ProductAnalysis{GTIN: gtin}
	if food == nil {
		return analysis
	}

	if food.FdcID != 0 {
		analysis.FdcID = strconv.Itoa(food.FdcID)
	}
	analysis.Description = strings.TrimSpace(food.Description)
	analysis.BrandName = strings.TrimSpace(food.BrandName)
	analysis.BrandOwner = strings.TrimSpace(food.BrandOwner)
	analysis.Ingredients = strings.TrimSpace(food.Ingredients)
	analysis.Source = domain.SourceUSDA
	return analysis
}
