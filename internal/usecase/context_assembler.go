package usecase

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/observability"
)

const (
	assistantPersona = "You are Aurora, a friendly and concise e-commerce shopping assistant. " +
		"Your goal is to answer questions only about products, shipping, and existing orders. " +
		"If the question is outside these topics, politely redirect the user back to chat with human staff through the Support Chat Page."
	shippingPolicy = "A general shipping policy is that standard delivery takes **5 to 7 business days** across the region. " +
		"Use this fact when answering general delivery questions."

	groundingSeparator = "\n---\n"
	groundingDirective = "The user's query must be answered using this factual context."

	// contextTimeLayout renders timestamps in history turns and order facts
	contextTimeLayout = "2006-01-02 15:04:05-07:00"
)

// systemInstruction opens every conversation. It is sent under the user role.
var systemInstruction = "SYSTEM INSTRUCTION: " + assistantPersona + " " + shippingPolicy +
	groundingSeparator +
	"The following is the conversation history and the new query. Stick to the SYSTEM INSTRUCTION at all times."

// Grounding describes which factual block, if any, was injected into the live query
type Grounding string

const (
	GroundingNone    Grounding = "none"
	GroundingOrder   Grounding = "order"
	GroundingProduct Grounding = "product"
)

// senderRoles maps stored message senders to conversation roles. Unknown senders are treated as the user.
var senderRoles = map[string]domain.Role{
	"user":      domain.RoleUser,
	"assistant": domain.RoleModel,
	"ai":        domain.RoleModel,
	"bot":       domain.RoleModel,
}

// RoleForSender maps a stored sender tag to a conversation role
func RoleForSender(sender string) domain.Role {
	if role, ok := senderRoles[strings.ToLower(strings.TrimSpace(sender))]; ok {
		return role
	}
	return domain.RoleUser
}

// CatalogSource provides the cached catalog snapshot
type CatalogSource interface {
	Entries(ctx context.Context) ([]domain.CatalogEntry, error)
}

// EntityMatcher recognizes catalog mentions in free text
type EntityMatcher interface {
	Extract(text string, catalog []domain.CatalogEntry) domain.Entities
}

// AssembledContext is a built prompt plus how it was grounded
type AssembledContext struct {
	Turns     domain.ConversationContext
	Intent    Intent
	Grounding Grounding
}

// ContextAssemblerConfig holds configuration for the context assembler
type ContextAssemblerConfig struct {
	FallbackSample int
}

// ContextAssembler builds role-tagged prompts for the generative assistant,
// injecting order or product facts ahead of the live query
type ContextAssembler struct {
	catalog        CatalogSource
	extractor      EntityMatcher
	orders         *OrderResolver
	products       domain.ProductRepository
	fallbackSample int
	log            zerolog.Logger
	metrics        *observability.Metrics
}

// NewContextAssembler creates a context assembler
func NewContextAssembler(
	catalog CatalogSource,
	extractor EntityMatcher,
	orders *OrderResolver,
	products domain.ProductRepository,
	config ContextAssemblerConfig,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *ContextAssembler {
	sample := config.FallbackSample
	if sample <= 0 {
		sample = 5
	}
	return &ContextAssembler{
		catalog:        catalog,
		extractor:      extractor,
		orders:         orders,
		products:       products,
		fallbackSample: sample,
		log:            observability.Component(log, "context_assembler"),
		metrics:        metrics,
	}
}

// Build assembles the instruction turn, the mapped history and the live query.
// Grounding failures never fail the build; the query is then sent without facts.
func (a *ContextAssembler) Build(ctx context.Context, history []domain.ChatMessage, query string, customerID uint) *AssembledContext {
	turns := make(domain.ConversationContext, 0, len(history)+2)
	turns = append(turns, domain.ConversationTurn{Role: domain.RoleUser, Text: systemInstruction})

	for _, msg := range history {
		turns = append(turns, domain.ConversationTurn{
			Role:      RoleForSender(msg.Sender),
			Text:      msg.Timestamp.Format(contextTimeLayout) + " " + msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	intent := ClassifyIntent(query)
	a.metrics.IntentClassified(string(intent))

	var facts string
	grounding := GroundingNone
	if intent.OrderRelated() {
		if summary := a.orders.Resolve(ctx, query, customerID); summary != nil {
			facts = orderFacts(summary)
			grounding = GroundingOrder
		}
	} else if products := a.groundingProducts(ctx, query); len(products) > 0 {
		facts = productFacts(products)
		grounding = GroundingProduct
	}
	a.metrics.Grounded(string(grounding))

	live := query
	if facts != "" {
		live = facts + groundingSeparator + query
	}
	turns = append(turns, domain.ConversationTurn{Role: domain.RoleUser, Text: live, Timestamp: time.Now()})

	a.log.Debug().
		Str("intent", string(intent)).
		Str("grounding", string(grounding)).
		Int("history", len(history)).
		Msg("conversation context assembled")
	return &AssembledContext{Turns: turns, Intent: intent, Grounding: grounding}
}

// groundingProducts selects the products to describe for a non-order query.
// Matched names take precedence over brands, and brands over categories; the constraints are not intersected.
// With no usable match a small sample of active products is returned.
func (a *ContextAssembler) groundingProducts(ctx context.Context, query string) []domain.Product {
	entries, err := a.catalog.Entries(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("catalog unavailable, matching against an empty catalog")
		entries = nil
	}
	entities := a.extractor.Extract(query, entries)

	filter := domain.ProductFilter{ActiveOnly: true}
	switch {
	case len(entities.Products) > 0:
		filter.Names = sortedKeys(entities.Products)
	case len(entities.Brands) > 0:
		filter.NameContains = sortedKeys(entities.Brands)
	case len(entities.Categories) > 0:
		filter.CategoryNames = sortedKeys(entities.Categories)
	}

	var products []domain.Product
	if !entities.Empty() {
		products, err = a.products.Find(ctx, filter)
		if err != nil {
			a.log.Warn().Err(err).Msg("product grounding lookup failed")
			return nil
		}
	}
	if len(products) > 0 {
		return products
	}

	products, err = a.products.Find(ctx, domain.ProductFilter{ActiveOnly: true, Limit: a.fallbackSample})
	if err != nil {
		a.log.Warn().Err(err).Msg("fallback product sample failed")
		return nil
	}
	return products
}

func orderFacts(s *domain.OrderSummary) string {
	return "CURRENT ORDER CONTEXT: Order #" + strconv.FormatUint(uint64(s.OrderID), 10) +
		", Status: " + s.Status +
		", Items: " + strings.Join(s.Items, ",") +
		", Shipping Address: " + s.ShippingAddress +
		", Order Last Updated: " + s.UpdatedAt.Format(contextTimeLayout) + ". " +
		groundingDirective
}

func productFacts(products []domain.Product) string {
	details := make([]string, 0, len(products))
	for _, p := range products {
		details = append(details, "Product Name: "+p.Name+
			", SKU: "+p.SKU+
			", Description: "+p.Description+
			", Price: "+strconv.FormatFloat(p.Price, 'f', 2, 64)+
			", Stock: "+strconv.Itoa(p.Stock)+".")
	}
	return "CURRENT PRODUCT CONTEXT: " + strings.Join(details, " ") + " " + groundingDirective
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
