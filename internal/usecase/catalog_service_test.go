package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/observability"
)

var (
	catElectronics = &domain.Category{ID: 1, Name: "Electronics"}
	catBeauty      = &domain.Category{ID: 2, Name: "Beauty & Personal Care"}
)

func catalogProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, SKU: "EL-001", Name: "SonicWave Pro Headphones", CategoryID: 1, Category: catElectronics, IsActive: true},
		{ID: 2, SKU: "BE-001", Name: "  PureGlow Lipstick ", CategoryID: 2, Category: catBeauty, IsActive: true},
		{ID: 3, SKU: "BE-002", Name: "Serum", CategoryID: 2, Category: catBeauty, IsActive: true},
	}
}

func newTestCatalog(products *MockProductRepository, cache *MockCacheRepository) *CatalogService {
	return NewCatalogService(products, cache, CatalogServiceConfig{TTL: 10 * time.Minute}, zerolog.Nop(), nil)
}

func TestCatalogService_Entries(t *testing.T) {
	svc := newTestCatalog(NewMockProductRepository(catalogProducts()...), NewMockCacheRepository())

	entries, err := svc.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.CatalogEntry{
		{Name: "SonicWave Pro Headphones", SKU: "EL-001", Category: "Electronics", Brand: "SonicWave Pro"},
		{Name: "PureGlow Lipstick", SKU: "BE-001", Category: "Beauty & Personal Care", Brand: "PureGlow Lipstick"},
		{Name: "Serum", SKU: "BE-002", Category: "Beauty & Personal Care", Brand: "Serum"},
	}, entries)
}

func TestCatalogService_CachesSnapshot(t *testing.T) {
	products := NewMockProductRepository(catalogProducts()...)
	cache := NewMockCacheRepository()
	svc := newTestCatalog(products, cache)
	ctx := context.Background()

	first, err := svc.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cache.lastTTL)

	// a hit must not see store changes until invalidation
	products.setProducts(catalogProducts()[:1]...)
	second, err := svc.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, products.queries, 1)
}

func TestCatalogService_InvalidateRoundTrip(t *testing.T) {
	products := NewMockProductRepository(catalogProducts()...)
	cache := NewMockCacheRepository()
	svc := newTestCatalog(products, cache)
	ctx := context.Background()

	names, err := svc.Names(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "Serum")
	_, err = svc.Entries(ctx)
	require.NoError(t, err)

	products.setProducts(catalogProducts()[:2]...)
	require.NoError(t, svc.Invalidate(ctx))

	for _, key := range []string{CatalogEntriesKey, CatalogNamesKey} {
		ok, err := cache.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	names, err = svc.Names(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, "Serum")

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "Serum", e.Name)
	}
}

// mutatingProductRepository runs a product mutation, with its invalidations, while a rebuild is reading
type mutatingProductRepository struct {
	*MockProductRepository
	mutate func()
}

func (m *mutatingProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	snapshot, err := m.MockProductRepository.All(ctx)
	if m.mutate != nil {
		mutate := m.mutate
		m.mutate = nil
		mutate()
	}
	return snapshot, err
}

// invalidatingCache runs onStore right after a snapshot key is written
type invalidatingCache struct {
	*MockCacheRepository
	onStore func()
}

func (c *invalidatingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.MockCacheRepository.Set(ctx, key, value, ttl)
	if key != CatalogGenerationKey && c.onStore != nil {
		onStore := c.onStore
		c.onStore = nil
		onStore()
	}
	return err
}

func TestCatalogService_MutationDuringRebuildIsNotCached(t *testing.T) {
	ctx := context.Background()
	deleted := domain.Product{ID: 9, SKU: "EL-009", Name: "Deleted Lamp", CategoryID: 1, Category: catElectronics, IsActive: true}

	tests := []struct {
		name string
		read func(svc *CatalogService) ([]string, error)
		key  string
	}{
		{
			name: "entries",
			read: func(svc *CatalogService) ([]string, error) {
				entries, err := svc.Entries(ctx)
				names := make([]string, 0, len(entries))
				for _, e := range entries {
					names = append(names, e.Name)
				}
				return names, err
			},
			key: CatalogEntriesKey,
		},
		{
			name: "names",
			read: func(svc *CatalogService) ([]string, error) { return svc.Names(ctx) },
			key:  CatalogNamesKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := &mutatingProductRepository{MockProductRepository: NewMockProductRepository(deleted)}
			cache := NewMockCacheRepository()
			svc := NewCatalogService(products, cache, CatalogServiceConfig{}, zerolog.Nop(), nil)

			// delete the row and run both invalidation passes while the rebuild holds the old rows
			products.mutate = func() {
				products.setProducts()
				require.NoError(t, svc.Invalidate(ctx))
				require.NoError(t, svc.Invalidate(ctx))
			}

			stale, err := tt.read(svc)
			require.NoError(t, err)
			assert.Contains(t, stale, "Deleted Lamp", "the overlapping read itself may see the old rows")

			ok, err := cache.Exists(ctx, tt.key)
			require.NoError(t, err)
			assert.False(t, ok, "snapshot built before the mutation must not be cached")

			fresh, err := tt.read(svc)
			require.NoError(t, err)
			assert.NotContains(t, fresh, "Deleted Lamp")
		})
	}
}

func TestCatalogService_InvalidationAfterStoreDropsSnapshot(t *testing.T) {
	ctx := context.Background()
	products := NewMockProductRepository(catalogProducts()...)
	cache := &invalidatingCache{MockCacheRepository: NewMockCacheRepository()}
	svc := NewCatalogService(products, cache, CatalogServiceConfig{}, zerolog.Nop(), nil)

	// the generation moves between the snapshot write and its confirmation
	cache.onStore = func() {
		products.setProducts(catalogProducts()[:1]...)
		_ = cache.MockCacheRepository.Set(ctx, CatalogGenerationKey, []byte("moved"), time.Hour)
	}

	_, err := svc.Entries(ctx)
	require.NoError(t, err)

	ok, err := cache.Exists(ctx, CatalogEntriesKey)
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	ok, err = cache.Exists(ctx, CatalogEntriesKey)
	require.NoError(t, err)
	assert.True(t, ok, "a rebuild at a stable generation is cached")
}

func TestCatalogService_InvalidateMovesGeneration(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()
	svc := newTestCatalog(NewMockProductRepository(), cache)

	require.NoError(t, svc.Invalidate(ctx))
	first, err := cache.Get(ctx, CatalogGenerationKey)
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx))
	second, err := cache.Get(ctx, CatalogGenerationKey)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, string(first), string(second))
}

func TestCatalogService_CacheFailuresDegradeToRebuild(t *testing.T) {
	cache := NewMockCacheRepository()
	cache.getError = domain.ErrCacheUnavailable
	cache.setError = domain.ErrCacheUnavailable
	products := NewMockProductRepository(catalogProducts()...)
	svc := newTestCatalog(products, cache)

	entries, err := svc.Entries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = svc.Entries(context.Background())
	require.NoError(t, err)
	assert.Len(t, products.queries, 2, "every read rebuilds while the cache is down")
}

func TestCatalogService_UndecodableSnapshotIsAMiss(t *testing.T) {
	cache := NewMockCacheRepository()
	cache.data[CatalogEntriesKey] = []byte("not json")
	svc := newTestCatalog(NewMockProductRepository(catalogProducts()...), cache)

	entries, err := svc.Entries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestCatalogService_StoreError(t *testing.T) {
	products := NewMockProductRepository()
	products.findErr = errors.New("db down")
	svc := newTestCatalog(products, NewMockCacheRepository())

	_, err := svc.Entries(context.Background())
	assert.Error(t, err)
	_, err = svc.Names(context.Background())
	assert.Error(t, err)
}

func TestCatalogService_InvalidateError(t *testing.T) {
	cache := NewMockCacheRepository()
	cache.delError = domain.ErrCacheUnavailable
	svc := newTestCatalog(NewMockProductRepository(), cache)

	assert.ErrorIs(t, svc.Invalidate(context.Background()), domain.ErrCacheUnavailable)
}

func TestCatalogService_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	svc := NewCatalogService(NewMockProductRepository(catalogProducts()...), NewMockCacheRepository(),
		CatalogServiceConfig{}, zerolog.Nop(), metrics)
	ctx := context.Background()

	_, _ = svc.Entries(ctx)
	_, _ = svc.Entries(ctx)
	require.NoError(t, svc.Invalidate(ctx))

	count, err := testutil.GatherAndCount(reg, "aurora_catalog_cache_events_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "hit, miss and invalidate series")
}

func TestInferBrand(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"SonicWave Pro Headphones", "SonicWave Pro"},
		{"Serum", "Serum"},
		{"  Aurora   Lamp  ", "Aurora Lamp"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferBrand(tt.name))
		})
	}
}
