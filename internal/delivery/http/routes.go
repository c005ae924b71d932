package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/foodtrust/backend/config"
)

// SetupRouter creates and configures the Gin router. A nil gatherer leaves
// /metrics unregistered.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.POST("/gtin-lookup", handler.LookupProduct)

		ingredients := v1.Group("/ingredients")
		{
			ingredients.POST("/classify", handler.ClassifyIngredients)
		}

		v1.GET("/cache/stats", handler.CacheStatistics)
		v1.POST("/reference/reload", handler.ReloadReference)
	}

	return router
}
