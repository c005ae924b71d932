package domain

import "time"

// Lookup sources reported on a ProductAnalysis
const (
	SourceCache = "cache"
	SourceStore = "store"
	SourceUSDA  = "usda"
)

// ProductAnalysis is the cached payload for one product: origin metadata plus its classification
type ProductAnalysis struct {
	GTIN        string               `json:"gtin"`
	FdcID       string               `json:"fdcId,omitempty"`
	Description string               `json:"description"`
	BrandName   string               `json:"brandName,omitempty"`
	BrandOwner  string               `json:"brandOwner,omitempty"`
	Ingredients string               `json:"ingredients"`
	Result      ClassificationResult `json:"result"`
	Source      string               `json:"source"`
	AnalyzedAt  time.Time            `json:"analyzedAt"`
}

// Clone returns a copy of a whose classification shares no slices with it.
func (a ProductAnalysis) Clone() ProductAnalysis {
	a.Result = a.Result.Clone()
	return a
}

// CacheEntry is one slot of the bounded value-scored cache
type CacheEntry struct {
	Key        string          `json:"key"`
	Payload    ProductAnalysis `json:"payload"`
	HitCount   int64           `json:"hitCount"`
	LastAccess time.Time       `json:"lastAccess"`
}

// ClassifyRequest represents an ad hoc ingredient classification request
type ClassifyRequest struct {
	Ingredients string `json:"ingredients"`
}

// LookupRequest represents a GTIN lookup request
type LookupRequest struct {
	GTIN string `json:"gtin" binding:"required"`
}

// FreshnessPolicy scores cached products for eviction: recently used entries
// earn a fixed bonus on top of their usage count.
type FreshnessPolicy struct {
	Window time.Duration
	Bonus  int64
}

// EffectiveScore returns hits plus the bonus when lastAccess is strictly
// within Window of now.
func (p FreshnessPolicy) EffectiveScore(hits int64, lastAccess, now time.Time) int64 {
	if now.Sub(lastAccess) < p.Window {
		return hits + p.Bonus
	}
	return hits
}
