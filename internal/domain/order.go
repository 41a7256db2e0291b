package domain

import (
	"strconv"
	"time"
)

// Order is a placed customer order
type Order struct {
	ID              uint        `json:"id"`
	CustomerID      uint        `json:"customerId"`
	Status          string      `json:"status"`
	TotalPrice      float64     `json:"totalPrice"`
	ShippingAddress string      `json:"shippingAddress"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem is a single line of an order
type OrderItem struct {
	ProductID uint     `json:"productId"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unitPrice"`
}

// String renders the line the way it is shown to customers, e.g. "2 x Aurora Lamp"
func (i OrderItem) String() string {
	name := "unknown product"
	if i.Product != nil {
		name = i.Product.Name
	}
	return strconv.Itoa(i.Quantity) + " x " + name
}

// OrderSummary is the factual snippet about a resolved order
type OrderSummary struct {
	OrderID         uint      `json:"orderId"`
	Status          string    `json:"status"`
	Items           []string  `json:"items"`
	ShippingAddress string    `json:"shippingAddress"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Summarize builds the factual summary of an order
func (o *Order) Summarize() *OrderSummary {
	items := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, item.String())
	}
	return &OrderSummary{
		OrderID:         o.ID,
		Status:          o.Status,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		UpdatedAt:       o.UpdatedAt,
	}
}
