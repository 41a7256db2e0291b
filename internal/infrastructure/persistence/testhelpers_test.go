package persistence

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/auroramart/personalization/internal/domain"
)

// newTestDB opens a private in-memory SQLite database for one test
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// fixture is a small seeded catalog
type fixture struct {
	electronics, books domain.Category
	headphones         domain.Product
	speaker            domain.Product
	novel              domain.Product
	archived           domain.Product
	outOfStock         domain.Product
}

func seedCatalog(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()
	cats := NewCategoryRepository(db)
	products := NewProductRepository(db)

	f := fixture{
		electronics: domain.Category{Name: "Electronics", Slug: "electronics"},
		books:       domain.Category{Name: "Books", Slug: "books"},
	}
	require.NoError(t, cats.Create(ctx, &f.electronics))
	require.NoError(t, cats.Create(ctx, &f.books))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.headphones = domain.Product{SKU: "EL-001", Name: "SonicWave Pro Headphones", CategoryID: f.electronics.ID,
		Price: 199, Rating: 4.5, Stock: 10, IsActive: true, CreatedAt: base}
	f.speaker = domain.Product{SKU: "EL-002", Name: "SonicWave Mini Speaker", CategoryID: f.electronics.ID,
		Price: 59, Rating: 4.5, Stock: 3, IsActive: true, CreatedAt: base.Add(time.Hour)}
	f.novel = domain.Product{SKU: "BK-001", Name: "The Quiet Orchard", CategoryID: f.books.ID,
		Price: 15, Rating: 4.8, Stock: 40, IsActive: true, CreatedAt: base}
	f.archived = domain.Product{SKU: "EL-003", Name: "SonicWave Classic", CategoryID: f.electronics.ID,
		Price: 99, Rating: 5, Stock: 1, IsActive: true, Archived: true, CreatedAt: base}
	f.outOfStock = domain.Product{SKU: "BK-002", Name: "Night Trains", CategoryID: f.books.ID,
		Price: 12, Rating: 4.9, Stock: 0, IsActive: true, CreatedAt: base}

	for _, p := range []*domain.Product{&f.headphones, &f.speaker, &f.novel, &f.archived, &f.outOfStock} {
		require.NoError(t, products.Create(ctx, p))
	}
	return f
}

// countingInvalidator records invalidations and can be told to fail
type countingInvalidator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
