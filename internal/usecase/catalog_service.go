package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/observability"
)

// Cache keys of the two catalog snapshot shapes. Invalidate drops both and moves the generation.
const (
	CatalogEntriesKey    = "catalog:entries"
	CatalogNamesKey      = "catalog:names"
	CatalogGenerationKey = "catalog:generation"
)

// generationTTL must outlive any rebuild by a wide margin; an expired generation reads as empty.
const generationTTL = 24 * time.Hour

// CatalogServiceConfig holds configuration for the catalog snapshot cache
type CatalogServiceConfig struct {
	TTL time.Duration
}

// CatalogService serves cached snapshots of the product catalog for text matching.
// Concurrent misses may rebuild the snapshot twice; rebuilds are idempotent.
// A rebuild that overlaps an invalidation never leaves its snapshot in the cache.
type CatalogService struct {
	products domain.ProductRepository
	cache    domain.CacheRepository
	ttl      time.Duration
	log      zerolog.Logger
	metrics  *observability.Metrics
}

// NewCatalogService creates a catalog service
func NewCatalogService(
	products domain.ProductRepository,
	cache domain.CacheRepository,
	config CatalogServiceConfig,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *CatalogService {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CatalogService{
		products: products,
		cache:    cache,
		ttl:      ttl,
		log:      observability.Component(log, "catalog"),
		metrics:  metrics,
	}
}

// Entries returns the enriched snapshot: name, SKU, category and inferred brand of every product
func (s *CatalogService) Entries(ctx context.Context) ([]domain.CatalogEntry, error) {
	var entries []domain.CatalogEntry
	if s.fromCache(ctx, CatalogEntriesKey, &entries) {
		return entries, nil
	}

	generation, known := s.generation(ctx)
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild catalog: %w", err)
	}
	entries = make([]domain.CatalogEntry, 0, len(products))
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		entries = append(entries, domain.CatalogEntry{
			Name:     name,
			SKU:      p.SKU,
			Category: p.CategoryName(),
			Brand:    InferBrand(name),
		})
	}

	if known {
		s.toCache(ctx, CatalogEntriesKey, entries, generation)
	}
	return entries, nil
}

// Names returns the lightweight snapshot holding only product names, for callers that match
// on names alone. The chat assistant needs brand and category too and reads Entries instead;
// both snapshots share the generation guard and are dropped together by Invalidate.
func (s *CatalogService) Names(ctx context.Context) ([]string, error) {
	var names []string
	if s.fromCache(ctx, CatalogNamesKey, &names) {
		return names, nil
	}

	generation, known := s.generation(ctx)
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild catalog names: %w", err)
	}
	names = make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, strings.TrimSpace(p.Name))
	}

	if known {
		s.toCache(ctx, CatalogNamesKey, names, generation)
	}
	return names, nil
}

// Invalidate moves the catalog generation and deletes every cached snapshot. It runs on each product mutation.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	if err := s.cache.Set(ctx, CatalogGenerationKey, []byte(uuid.NewString()), generationTTL); err != nil {
		return fmt.Errorf("invalidate catalog: %w", err)
	}
	if err := s.cache.Delete(ctx, CatalogEntriesKey, CatalogNamesKey); err != nil {
		return fmt.Errorf("invalidate catalog: %w", err)
	}
	s.metrics.CatalogCacheEvent("invalidate")
	s.log.Debug().Msg("catalog snapshot invalidated")
	return nil
}

// fromCache decodes key into dest and reports whether it was a usable hit
func (s *CatalogService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		s.metrics.CatalogCacheEvent("miss")
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable catalog snapshot")
		s.metrics.CatalogCacheEvent("miss")
		return false
	}
	s.metrics.CatalogCacheEvent("hit")
	return true
}

// generation reads the current catalog generation. known is false when the cache cannot tell.
func (s *CatalogService) generation(ctx context.Context) (value string, known bool) {
	data, err := s.cache.Get(ctx, CatalogGenerationKey)
	if errors.Is(err, domain.ErrCacheMiss) {
		return "", true
	}
	if err != nil {
		return "", false
	}
	return string(data), true
}

// toCache stores a snapshot built at generation. If the generation moved while it was built or stored,
// the snapshot is deleted again. Failures only cost a rebuild on the next read.
func (s *CatalogService) toCache(ctx context.Context, key string, value interface{}, generation string) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("encode catalog snapshot")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("store catalog snapshot")
		return
	}
	if current, known := s.generation(ctx); !known || current != generation {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("drop outdated catalog snapshot")
		}
		s.log.Debug().Str("key", key).Msg("catalog changed during rebuild, snapshot discarded")
		return
	}
	s.log.Debug().Str("key", key).Msg("catalog snapshot rebuilt")
}

// InferBrand guesses a brand from a product name: its first one or two words
func InferBrand(name string) string {
	words := strings.Fields(name)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}
