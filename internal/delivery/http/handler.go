package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/infrastructure/cache"
	"github.com/foodtrust/backend/internal/reference"
)

// maxIngredientsLength bounds ad hoc classification input
const maxIngredientsLength = 20000

// ProductLookup resolves a GTIN to an analyzed product
type ProductLookup interface {
	Lookup(ctx context.Context, gtin string) (*domain.ProductAnalysis, error)
}

// IngredientClassifier classifies a raw ingredient declaration
type IngredientClassifier interface {
	Classify(raw string) domain.ClassificationResult
}

// CacheStats reports result cache usage
type CacheStats interface {
	Stats() cache.Stats
}

// ReferenceReloader rebuilds the reference index from its sources
type ReferenceReloader interface {
	Reload() *reference.Index
}

// HandlerConfig holds the handler dependencies. Nil members disable their
// endpoints with 501.
type HandlerConfig struct {
	Lookup     ProductLookup
	Classifier IngredientClassifier
	Cache      CacheStats
	Reference  ReferenceReloader
	Logger     *zap.Logger
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	lookup     ProductLookup
	classifier IngredientClassifier
	cache      CacheStats
	reference  ReferenceReloader
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(config HandlerConfig) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		lookup:     config.Lookup,
		classifier: config.Classifier,
		cache:      config.Cache,
		reference:  config.Reference,
		logger:     logger.Named("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodtrust-backend",
		"version": "1.0.0",
	})
}

// LookupProduct handles GTIN lookup requests
func (h *Handler) LookupProduct(c *gin.Context) {
	if h.lookup == nil {
		notImplemented(c, "GTIN lookup")
		return
	}

	var req domain.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: request body must be JSON with a gtin field", domain.ErrInvalidRequest))
		return
	}

	analysis, err := h.lookup.Lookup(c.Request.Context(), req.GTIN)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// ClassifyIngredients classifies an ingredient declaration sent in the body
func (h *Handler) ClassifyIngredients(c *gin.Context) {
	if h.classifier == nil {
		notImplemented(c, "ingredient classification")
		return
	}

	var req domain.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: request body must be JSON with an ingredients field", domain.ErrInvalidRequest))
		return
	}
	if len(req.Ingredients) > maxIngredientsLength {
		h.respondError(c, fmt.Errorf("%w: ingredients text exceeds %d bytes", domain.ErrInvalidRequest, maxIngredientsLength))
		return
	}

	// empty text is valid and classifies as no ingredients listed
	c.JSON(http.StatusOK, h.classifier.Classify(strings.TrimSpace(req.Ingredients)))
}

// CacheStatistics reports result cache usage
func (h *Handler) CacheStatistics(c *gin.Context) {
	if h.cache == nil {
		notImplemented(c, "cache statistics")
		return
	}
	c.JSON(http.StatusOK, h.cache.Stats())
}

// ReloadReference rebuilds the reference index and reports its size
func (h *Handler) ReloadReference(c *gin.Context) {
	if h.reference == nil {
		notImplemented(c, "reference reload")
		return
	}

	idx := h.reference.Reload()
	st := idx.Stats()
	h.logger.Info("reference index reloaded",
		zap.Uint64("generation", st.Generation),
		zap.Int("substances", st.Substances),
		zap.Int("aliases", st.Aliases),
		zap.Int("common_ingredients", st.CommonIngredients),
		zap.Int("collisions", st.Collisions),
	)
	c.JSON(http.StatusOK, st)
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidGTIN), errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": domain.ErrRateLimited.Error()})
	case errors.Is(err, domain.ErrUSDAAPIFailure):
		h.logger.Warn("upstream failure", zap.String("request_id", RequestID(c)), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "USDA FoodData Central is unavailable"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		h.logger.Error("lookup failed", zap.String("request_id", RequestID(c)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func notImplemented(c *gin.Context, feature string) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"error": feature + " is not configured",
	})
}
