package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/auroramart/personalization/internal/domain"
)

// ProductRepository is the gorm-backed product and category store
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Find returns the products matching filter
func (r *ProductRepository) Find(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&productModel{}).Preload("Category")

	if len(filter.SKUs) > 0 {
		q = q.Where("products.sku IN ?", filter.SKUs)
	}
	if len(filter.ExcludeSKUs) > 0 {
		q = q.Where("products.sku NOT IN ?", filter.ExcludeSKUs)
	}
	if len(filter.Names) > 0 {
		q = q.Where("products.name IN ?", filter.Names)
	}
	if len(filter.NameContains) > 0 {
		var group *gorm.DB
		for _, fragment := range filter.NameContains {
			pattern := "%" + strings.ToLower(fragment) + "%"
			if group == nil {
				group = r.db.Where("LOWER(products.name) LIKE ?", pattern)
			} else {
				group = group.Or("LOWER(products.name) LIKE ?", pattern)
			}
		}
		q = q.Where(group)
	}
	if len(filter.CategoryIDs) > 0 {
		q = q.Where("products.category_id IN ?", filter.CategoryIDs)
	}
	if len(filter.CategoryNames) > 0 {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name IN ?", filter.CategoryNames)
	}
	if filter.ActiveOnly {
		q = q.Where("products.is_active = ? AND products.archived = ?", true, false)
	}
	if filter.InStockOnly {
		q = q.Where("products.stock > 0")
	}
	if filter.OrderByRating {
		q = q.Order("products.rating DESC").Order("products.created_at DESC").Order("products.id")
	} else {
		q = q.Order("products.id")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []productModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for i := range rows {
		products = append(products, toProduct(&rows[i]))
	}
	return products, nil
}

// All returns every product, including inactive and archived ones
func (r *ProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	return r.Find(ctx, domain.ProductFilter{})
}

// Create inserts a product. Catalog invalidation runs in the registered callbacks.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m := fromProduct(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create product %s: %w", p.SKU, err)
	}
	p.ID, p.CreatedAt, p.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}

// Update writes every column of an existing product except its id and creation time
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if p.ID == 0 {
		return fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}
	m := fromProduct(p)
	res := r.db.WithContext(ctx).Model(&productModel{ID: p.ID}).
		Select("*").Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("update product %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a product by id
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&productModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CategoryRepository is the gorm-backed category store
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByName resolves a category by exact name
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	var m categoryModel
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("id").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}
	return toCategory(&m), nil
}

// Create inserts a category
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m := &categoryModel{Name: c.Name, Slug: c.Slug, ParentID: c.ParentID}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create category %q: %w", c.Name, err)
	}
	c.ID = m.ID
	return nil
}
