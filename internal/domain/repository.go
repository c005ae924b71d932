package domain

import (
	"context"
	"time"
)

// USDAClient defines the interface for interacting with USDA FoodData Central API
type USDAClient interface {
	SearchByGTIN(ctx context.Context, gtin string) (*USDAFood, error)
	GetFoodDetails(ctx context.Context, fdcID string) (*USDAFood, error)
}

// FdcResolver maps a GTIN to a FoodData Central id without calling the API
type FdcResolver interface {
	Resolve(gtin string) (fdcID string, ok bool)
}

// ResultCache is the bounded in-process cache consulted before any origin fetch
type ResultCache interface {
	Get(key string) (CacheEntry, bool)
	Put(key string, payload ProductAnalysis)
	Count() int
}

// StoredProduct is a durable product row with its usage counters
type StoredProduct struct {
	Analysis    ProductAnalysis
	LookupCount int64
	LastAccess  time.Time
}

// ProductRepository defines durable persistence for analyzed products
type ProductRepository interface {
	Get(ctx context.Context, gtin string) (*StoredProduct, error)
	Save(ctx context.Context, analysis ProductAnalysis) error
	RecordLookup(ctx context.Context, gtin string) error
	Count(ctx context.Context) (int, error)
	EvictLeastValuable(ctx context.Context) (string, error)
}
