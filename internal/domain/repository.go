package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes so in-memory and Redis stores behave the same.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductRepository is the read side of the product store
type ProductRepository interface {
	Find(ctx context.Context, filter ProductFilter) ([]Product, error)
	All(ctx context.Context) ([]Product, error)
}

// CategoryRepository resolves category references
type CategoryRepository interface {
	GetByName(ctx context.Context, name string) (*Category, error)
}

// CustomerRepository reads demographics and stores predicted categories
type CustomerRepository interface {
	GetByID(ctx context.Context, id uint) (*Customer, error)
	// GetCart returns nil without error when the customer has no cart
	GetCart(ctx context.Context, customerID uint) (*Cart, error)
	UpdatePreferredCategory(ctx context.Context, customerID uint, label string, categoryID *uint) error
}

// OrderRepository looks up orders scoped to their owner
type OrderRepository interface {
	GetForCustomer(ctx context.Context, orderID, customerID uint) (*Order, error)
}

// ChatRepository stores assistant sessions and their messages
type ChatRepository interface {
	GetSession(ctx context.Context, sessionID, customerID uint) (*ChatSession, error)
	Messages(ctx context.Context, sessionID uint) ([]ChatMessage, error)
	AddMessage(ctx context.Context, msg *ChatMessage) error
}

// ChatGenerator is the generative assistant backend
type ChatGenerator interface {
	Generate(ctx context.Context, conversation ConversationContext) (*Generation, error)
}

// CatalogInvalidator drops cached catalog snapshots after product mutations
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}
