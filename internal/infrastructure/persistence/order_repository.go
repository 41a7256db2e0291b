package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/auroramart/personalization/internal/domain"
)

// OrderRepository is the gorm-backed order store
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetForCustomer loads an order only if it belongs to customerID.
// Orders of other customers are reported as domain.ErrNotFound.
func (r *OrderRepository) GetForCustomer(ctx context.Context, orderID, customerID uint) (*domain.Order, error) {
	var m orderModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return toOrder(&m), nil
}

// Create inserts an order with its items
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	m := &orderModel{
		CustomerID:      o.CustomerID,
		Status:          o.Status,
		TotalPrice:      o.TotalPrice,
		ShippingAddress: o.ShippingAddress,
	}
	for _, item := range o.Items {
		m.Items = append(m.Items, orderItemModel{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	o.ID, o.CreatedAt, o.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	return nil
}
