package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/infrastructure/usda"
	"github.com/foodtrust/backend/internal/stats"
)

var gtinPattern = regexp.MustCompile(`^\d{8,14}$`)

// ValidateGTIN trims gtin and checks that it is 8 to 14 digits
func ValidateGTIN(gtin string) (string, error) {
	gtin = strings.TrimSpace(gtin)
	if !gtinPattern.MatchString(gtin) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidGTIN, gtin)
	}
	return gtin, nil
}

// IngredientClassifier classifies a raw ingredient declaration
type IngredientClassifier interface {
	Classify(raw string) domain.ClassificationResult
}

// LookupServiceConfig holds the optional collaborators of the lookup service
type LookupServiceConfig struct {
	// Store is the durable product store; nil disables it.
	Store domain.ProductRepository
	// Resolver maps GTINs to FDC IDs locally; nil always searches USDA.
	Resolver domain.FdcResolver
	Stats    stats.Collector
	Logger   *zap.Logger
}

// LookupService resolves a GTIN to an analyzed product
type LookupService struct {
	cache      domain.ResultCache
	store      domain.ProductRepository
	resolver   domain.FdcResolver
	usdaClient domain.USDAClient
	classifier IngredientClassifier
	stats      stats.Collector
	logger     *zap.Logger
	now        func() time.Time
}

// NewLookupService creates a new lookup service with dependencies
func NewLookupService(
	cache domain.ResultCache,
	usdaClient domain.USDAClient,
	classifier IngredientClassifier,
	config LookupServiceConfig,
) *LookupService {
	collector := config.Stats
	if collector == nil {
		collector = stats.NewNoop()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LookupService{
		cache:      cache,
		store:      config.Store,
		resolver:   config.Resolver,
		usdaClient: usdaClient,
		classifier: classifier,
		stats:      collector,
		logger:     logger.Named("lookup"),
		now:        time.Now,
	}
}

// Lookup returns the analysis for gtin.
// Flow: cache -> durable store -> USDA (map or branded search) -> classify -> cache + store.
// Origin fetches run outside the cache; only the final Put touches it.
func (s *LookupService) Lookup(ctx context.Context, gtin string) (*domain.ProductAnalysis, error) {
	gtin, err := ValidateGTIN(gtin)
	if err != nil {
		return nil, err
	}
	s.stats.IncCounter(stats.MetricLookups, 1)

	if entry, ok := s.cache.Get(gtin); ok {
		analysis := entry.Payload
		analysis.Source = domain.SourceCache
		s.logger.Debug("cache hit", zap.String("gtin", gtin), zap.Int64("hit_count", entry.HitCount))
		return &analysis, nil
	}

	if analysis, ok := s.fromStore(ctx, gtin); ok {
		s.cache.Put(gtin, *analysis)
		return analysis, nil
	}

	food, err := s.fetch(ctx, gtin)
	if err != nil {
		s.stats.IncCounter(stats.MetricLookupErrors, 1)
		return nil, err
	}
	s.stats.IncCounter(stats.MetricUSDAFetches, 1)

	analysis := usda.MapToProductAnalysis(gtin, food)
	analysis.Result = s.classifier.Classify(analysis.Ingredients)
	analysis.Source = domain.SourceUSDA
	analysis.AnalyzedAt = s.now().UTC()

	s.cache.Put(gtin, analysis)
	if s.store != nil {
		if err := s.store.Save(ctx, analysis); err != nil {
			// the cached copy still serves lookups
			s.logger.Warn("failed to persist product", zap.String("gtin", gtin), zap.Error(err))
		}
	}

	s.logger.Info("product analyzed",
		zap.String("gtin", gtin),
		zap.String("fdc_id", analysis.FdcID),
		zap.Int("processing_level", int(analysis.Result.ProcessingLevel)),
		zap.Float64("completeness", analysis.Result.CompletenessScore),
	)
	return &analysis, nil
}

func (s *LookupService) fromStore(ctx context.Context, gtin string) (*domain.ProductAnalysis, bool) {
	if s.store == nil {
		return nil, false
	}

	stored, err := s.store.Get(ctx, gtin)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Warn("product store read failed", zap.String("gtin", gtin), zap.Error(err))
		}
		return nil, false
	}

	if err := s.store.RecordLookup(ctx, gtin); err != nil {
		s.logger.Warn("failed to record lookup", zap.String("gtin", gtin), zap.Error(err))
	}
	s.stats.IncCounter(stats.MetricStoreHits, 1)

	analysis := stored.Analysis
	analysis.Source = domain.SourceStore
	return &analysis, true
}

// fetch gets the food from USDA, by mapped FDC ID when known and by branded
// GTIN search otherwise or when the mapped ID is gone.
func (s *LookupService) fetch(ctx context.Context, gtin string) (*domain.USDAFood, error) {
	if s.resolver != nil {
		if fdcID, ok := s.resolver.Resolve(gtin); ok {
			food, err := s.usdaClient.GetFoodDetails(ctx, fdcID)
			if err == nil {
				return food, nil
			}
			if !errors.Is(err, domain.ErrProductNotFound) {
				return nil, fmt.Errorf("fetch fdc %s: %w", fdcID, err)
			}
			s.logger.Info("mapped FDC ID not found, searching by GTIN",
				zap.String("gtin", gtin),
				zap.String("fdc_id", fdcID),
			)
		}
	}

	food, err := s.usdaClient.SearchByGTIN(ctx, gtin)
	if err != nil {
		return nil, fmt.Errorf("search gtin %s: %w", gtin, err)
	}
	return food, nil
}
