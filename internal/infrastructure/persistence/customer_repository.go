package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/auroramart/personalization/internal/domain"
)

// CustomerRepository is the gorm-backed customer store
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a customer repository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetByID loads a customer's demographic record
func (r *CustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var m customerModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return toCustomer(&m), nil
}

// GetCart returns the customer's cart with products loaded, or nil when there is none
func (r *CustomerRepository) GetCart(ctx context.Context, customerID uint) (*domain.Cart, error) {
	var m cartModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.added_at, cart_items.id") }).
		Preload("Items.Product").
		Where("customer_id = ?", customerID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart for customer %d: %w", customerID, err)
	}
	return toCart(&m), nil
}

// UpdatePreferredCategory stores a predicted label and its resolved category, which may be nil
func (r *CustomerRepository) UpdatePreferredCategory(ctx context.Context, customerID uint, label string, categoryID *uint) error {
	res := r.db.WithContext(ctx).Model(&customerModel{}).Where("id = ?", customerID).
		Updates(map[string]interface{}{
			"preferred_category":    label,
			"preferred_category_id": categoryID,
		})
	if res.Error != nil {
		return fmt.Errorf("update preferred category of customer %d: %w", customerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Create inserts a customer
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	m := fromCustomer(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	c.ID = m.ID
	return nil
}

// AddToCart puts a product into the customer's cart, creating the cart on first use
func (r *CustomerRepository) AddToCart(ctx context.Context, customerID, productID uint, quantity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart := cartModel{CustomerID: customerID}
		if err := tx.Where("customer_id = ?", customerID).FirstOrCreate(&cart).Error; err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}
		item := cartItemModel{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("add cart item: %w", err)
		}
		return nil
	})
}
