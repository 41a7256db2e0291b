package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auroramart/personalization/config"
	httpDelivery "github.com/auroramart/personalization/internal/delivery/http"
	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/infrastructure/cache"
	"github.com/auroramart/personalization/internal/infrastructure/gemini"
	"github.com/auroramart/personalization/internal/infrastructure/persistence"
	"github.com/auroramart/personalization/internal/observability"
	"github.com/auroramart/personalization/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "auroramart-personalization",
	})

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("cache", cfg.Cache.Type).
		Msg("starting AuroraMart personalization service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped with error")
	}
	log.Info().Msg("service stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// Infrastructure
	db, err := persistence.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	catalogCache, closeCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	products := persistence.NewProductRepository(db)
	categories := persistence.NewCategoryRepository(db)
	customers := persistence.NewCustomerRepository(db)
	orders := persistence.NewOrderRepository(db)
	chats := persistence.NewChatRepository(db)

	catalog := usecase.NewCatalogService(products, catalogCache, usecase.CatalogServiceConfig{TTL: cfg.Cache.TTL}, log, metrics)
	if err := persistence.RegisterCatalogInvalidation(db, catalog, log); err != nil {
		return err
	}

	// Models. The classifier is required at startup; the rule table degrades to fallbacks.
	predictor := usecase.NewCategoryPredictor(categories, customers, usecase.CategoryPredictorConfig{
		ClassifierPath: cfg.Models.ClassifierPath,
	}, log, metrics)
	if err := predictor.Load(); err != nil {
		return fmt.Errorf("load category classifier: %w", err)
	}

	recommender := usecase.NewRecommender(products, customers, usecase.RecommenderConfig{
		RulesPath:     cfg.Models.RulesPath,
		DefaultMetric: domain.RankingMetric(cfg.Recommender.DefaultMetric),
		DefaultTopN:   cfg.Recommender.DefaultTopN,
		Placements:    cfg.Recommender.Placements,
	}, log, metrics)

	// Assistant
	var generator domain.ChatGenerator
	if cfg.Assistant.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:            cfg.Assistant.Gemini.APIKey,
			Model:             cfg.Assistant.Gemini.Model,
			MaxRetries:        cfg.Assistant.Gemini.MaxRetries,
			RequestsPerSecond: cfg.RateLimit.Gemini,
		}, log)
		if err != nil {
			return err
		}
		generator = client
	} else {
		log.Warn().Msg("gemini api key not configured, assistant will answer with the fallback reply")
	}

	assembler := usecase.NewContextAssembler(
		catalog,
		usecase.NewEntityExtractor(cfg.Assistant.EntityThreshold),
		usecase.NewOrderResolver(orders, log),
		products,
		usecase.ContextAssemblerConfig{FallbackSample: cfg.Assistant.FallbackSample},
		log,
		metrics,
	)
	chat := usecase.NewChatService(chats, assembler, generator, log)

	// HTTP
	handler := httpDelivery.NewHandler(recommender, predictor, chat, log)
	router := httpDelivery.SetupRouter(cfg, handler, registry, log)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newCache builds the catalog snapshot store and returns its closer
func newCache(ctx context.Context, cfg config.CacheConfig) (domain.CacheRepository, func(), error) {
	switch cfg.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, "auroramart:")
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return redisCache, func() { _ = redisCache.Close() }, nil
	default:
		memoryCache := cache.NewMemoryCache()
		return memoryCache, func() { _ = memoryCache.Close() }, nil
	}
}
