package domain

import "time"

// Category is a product category. Categories may be nested through ParentID.
type Category struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID *uint  `json:"parentId,omitempty"`
}

// Product is a catalog item. It is read-only for this subsystem.
type Product struct {
	ID          uint      `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryID  uint      `json:"categoryId"`
	Category    *Category `json:"category,omitempty"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryName returns the name of the product's category, or "" when it was not loaded.
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// CatalogEntry is one row of the cached catalog snapshot used for text matching
type CatalogEntry struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Category string `json:"category"`
	Brand    string `json:"brand"` // first one or two words of the name
}

// ProductFilter narrows a product store query. Zero values mean "no constraint".
type ProductFilter struct {
	SKUs          []string
	ExcludeSKUs   []string
	Names         []string
	NameContains  []string // OR-ed, case-insensitive
	CategoryIDs   []uint
	CategoryNames []string
	ActiveOnly    bool // is_active and not archived
	InStockOnly   bool
	OrderByRating bool // rating desc, created_at desc
	Limit         int
}
