package usecase

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/observability"
)

// orderIDPattern matches an optional "order"/"#" prefix and captures the digits
var orderIDPattern = regexp.MustCompile(`(?:order\s*#?\s*|#\s*)?(\d+)`)

// ExtractOrderID returns the first digit run in text, e.g. "482" for "my order #482 status"
func ExtractOrderID(text string) (string, bool) {
	m := orderIDPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// OrderResolver turns order references in text into factual summaries for the requesting customer
type OrderResolver struct {
	orders domain.OrderRepository
	log    zerolog.Logger
}

// NewOrderResolver creates an order resolver
func NewOrderResolver(orders domain.OrderRepository, log zerolog.Logger) *OrderResolver {
	return &OrderResolver{
		orders: orders,
		log:    observability.Component(log, "order_resolver"),
	}
}

// Resolve extracts an order id from text and resolves it. It returns nil when nothing resolves.
func (r *OrderResolver) Resolve(ctx context.Context, text string, customerID uint) *domain.OrderSummary {
	id, ok := ExtractOrderID(text)
	if !ok {
		return nil
	}
	return r.ResolveOrder(ctx, id, customerID)
}

// ResolveOrder looks up orderID among customerID's orders.
// Unparseable ids, unknown orders and orders of other customers all yield nil.
func (r *OrderResolver) ResolveOrder(ctx context.Context, orderID string, customerID uint) *domain.OrderSummary {
	id, err := strconv.ParseUint(orderID, 10, 0)
	if err != nil || id == 0 {
		return nil
	}

	order, err := r.orders.GetForCustomer(ctx, uint(id), customerID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.log.Warn().Err(err).Uint64("order_id", id).Msg("order lookup failed")
		}
		return nil
	}
	return order.Summarize()
}
