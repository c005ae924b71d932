// Package app wires the service components into fx modules.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/foodtrust/backend/config"
	httpDelivery "github.com/foodtrust/backend/internal/delivery/http"
	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/infrastructure/cache"
	"github.com/foodtrust/backend/internal/infrastructure/sqlite"
	"github.com/foodtrust/backend/internal/infrastructure/usda"
	"github.com/foodtrust/backend/internal/logging"
	"github.com/foodtrust/backend/internal/reference"
	"github.com/foodtrust/backend/internal/stats"
	statslogger "github.com/foodtrust/backend/internal/stats/logger"
	promstats "github.com/foodtrust/backend/internal/stats/prometheus"
	"github.com/foodtrust/backend/internal/usecase"
)

// Core provides the classification engine and the lookup flow.
// Requires a *config.Config to be provided.
var Core = fx.Module("foodtrust.core",
	fx.Provide(
		newLogger,
		newRegistry,
		newCollector,
		newReferenceHolder,
		newEngine,
		newResultCache,
		newProductStore,
		newGTINMap,
		newUSDAClient,
		newLookupService,
	),
)

// HTTP provides the gin router and the HTTP server.
var HTTP = fx.Module("foodtrust.http",
	fx.Provide(
		newHandler,
		newRouter,
		newHTTPServer,
	),
	fx.Invoke(func(*http.Server) {}),
)

// Module is the complete server application.
var Module = fx.Options(
	fx.Provide(config.Load),
	Core,
	HTTP,
)

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// newCollector exports to Prometheus, and also logs every update when the
// logger runs at debug level.
func newCollector(registry *prometheus.Registry, logger *zap.Logger) stats.Collector {
	collector := promstats.New(registry)
	if logger.Core().Enabled(zap.DebugLevel) {
		return stats.Tee{collector, statslogger.New(logger)}
	}
	return collector
}

func newReferenceHolder(cfg *config.Config, logger *zap.Logger, collector stats.Collector) *reference.Holder {
	paths := reference.Paths{
		Substances:        cfg.Reference.SubstancesPath,
		CommonIngredients: cfg.Reference.CommonIngredientsPath,
		CommonRegulated:   cfg.Reference.CommonRegulatedPath,
	}
	return reference.NewHolder(func() *reference.Index {
		idx := reference.LoadIndex(paths, reference.WithLogger(logger))
		st := idx.Stats()
		collector.SetGauge(stats.MetricReferenceAliases, int64(st.Aliases))
		collector.SetGauge(stats.MetricReferenceCollisions, int64(st.Collisions))
		return idx
	})
}

func newEngine(cfg *config.Config, holder *reference.Holder, collector stats.Collector, logger *zap.Logger) (*usecase.Engine, error) {
	return usecase.NewEngine(holder, usecase.EngineConfig{PhraseMemoSize: cfg.Cache.PhraseMemoSize}, collector, logger)
}

func newResultCache(cfg *config.Config, collector stats.Collector, logger *zap.Logger) (*cache.Store, error) {
	return cache.New(
		cache.Config{
			Capacity:        cfg.Cache.Capacity,
			FreshnessWindow: cfg.Cache.FreshnessWindow,
			FreshnessBonus:  cfg.Cache.FreshnessBonus,
		},
		cache.WithStats(collector),
		cache.WithLogger(logger),
	)
}

// newProductStore returns nil when the durable store is disabled.
func newProductStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (domain.ProductRepository, error) {
	if cfg.Store.Type != config.StoreSQLite {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := sqlite.Open(ctx, sqlite.Config{
		Path:            cfg.Store.SQLitePath,
		MaxRows:         cfg.Store.MaxRows,
		FreshnessWindow: cfg.Cache.FreshnessWindow,
		FreshnessBonus:  cfg.Cache.FreshnessBonus,
	}, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

func newGTINMap(cfg *config.Config, logger *zap.Logger) *usda.GTINMap {
	return usda.LoadGTINMap(cfg.USDA.GTINMapPath, logger)
}

func newUSDAClient(cfg *config.Config, logger *zap.Logger) *usda.Client {
	client := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL,
		usda.WithLogger(logger),
		usda.WithRequestsPerHour(cfg.USDA.RequestsPerHour),
		usda.WithTimeout(cfg.USDA.Timeout),
	)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}
	return client
}

// LookupParams holds dependencies for creating the lookup service.
type LookupParams struct {
	fx.In

	Cache     *cache.Store
	Client    *usda.Client
	Engine    *usecase.Engine
	Store     domain.ProductRepository
	GTINMap   *usda.GTINMap
	Collector stats.Collector
	Logger    *zap.Logger
}

func newLookupService(p LookupParams) *usecase.LookupService {
	return usecase.NewLookupService(p.Cache, p.Client, p.Engine, usecase.LookupServiceConfig{
		Store:    p.Store,
		Resolver: p.GTINMap,
		Stats:    p.Collector,
		Logger:   p.Logger,
	})
}

func newHandler(lookup *usecase.LookupService, engine *usecase.Engine, resultCache *cache.Store, holder *reference.Holder, logger *zap.Logger) *httpDelivery.Handler {
	return httpDelivery.NewHandler(httpDelivery.HandlerConfig{
		Lookup:     lookup,
		Classifier: engine,
		Cache:      resultCache,
		Reference:  holder,
		Logger:     logger,
	})
}

func newRouter(cfg *config.Config, handler *httpDelivery.Handler, logger *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	return httpDelivery.SetupRouter(cfg, handler, logger, registry)
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("server listening",
				zap.String("addr", ln.Addr().String()),
				zap.String("environment", cfg.Server.Environment),
			)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
