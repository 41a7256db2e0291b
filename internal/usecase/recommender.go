package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/infrastructure/artifact"
	"github.com/auroramart/personalization/internal/observability"
)

// Recommendation placements and their default sizes
const (
	PlacementHomepage      = "homepage"
	PlacementProductDetail = "product_detail"
	PlacementCart          = "cart"
	PlacementCategory      = "category"
)

// RecommenderConfig holds configuration for the association-rule recommender
type RecommenderConfig struct {
	RulesPath     string
	DefaultMetric domain.RankingMetric
	DefaultTopN   int
	Placements    map[string]int
}

// ruleSet is the outcome of the single rule-table load. A failed load is kept so it is not retried per request.
type ruleSet struct {
	rules []domain.AssociationRule
	err   error
}

// Recommender produces product recommendations from mined association rules,
// falling back to category and popularity rankings when rules give nothing.
type Recommender struct {
	rulesPath     string
	defaultMetric domain.RankingMetric
	defaultTopN   int
	placements    map[string]int

	products  domain.ProductRepository
	customers domain.CustomerRepository
	log       zerolog.Logger
	metrics   *observability.Metrics

	mu    sync.Mutex
	rules atomic.Pointer[ruleSet]
}

// NewRecommender creates a recommender. The rule table is read lazily on the first request.
func NewRecommender(
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	config RecommenderConfig,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *Recommender {
	metric := config.DefaultMetric
	if metric == "" {
		metric = domain.MetricLift
	}
	topN := config.DefaultTopN
	if topN <= 0 {
		topN = 5
	}
	placements := map[string]int{
		PlacementHomepage:      8,
		PlacementProductDetail: 4,
		PlacementCart:          3,
		PlacementCategory:      6,
	}
	for name, size := range config.Placements {
		if size > 0 {
			placements[strings.ToLower(name)] = size
		}
	}

	return &Recommender{
		rulesPath:     config.RulesPath,
		defaultMetric: metric,
		defaultTopN:   topN,
		placements:    placements,
		products:      products,
		customers:     customers,
		log:           observability.Component(log, "recommender"),
		metrics:       metrics,
	}
}

// PlacementSize returns the configured list size for a named placement
func (r *Recommender) PlacementSize(placement string) (int, error) {
	size, ok := r.placements[strings.ToLower(strings.TrimSpace(placement))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown placement %q", domain.ErrInvalidRequest, placement)
	}
	return size, nil
}

func (r *Recommender) loadRules() ([]domain.AssociationRule, error) {
	if set := r.rules.Load(); set != nil {
		return set.rules, set.err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if set := r.rules.Load(); set != nil {
		return set.rules, set.err
	}

	rules, err := artifact.LoadRules(r.rulesPath)
	if err != nil {
		r.log.Warn().Err(err).Str("path", r.rulesPath).Msg("rule table unavailable, recommendations will use fallbacks")
	} else {
		r.log.Info().Str("path", r.rulesPath).Int("rules", len(rules)).Msg("rule table loaded")
	}
	r.rules.Store(&ruleSet{rules: rules, err: err})
	return rules, err
}

// Recommend returns up to TopN active products related to the request items, never including the items themselves.
// Only an invalid metric name is an error; rule misses and load failures degrade to the fallback chain.
func (r *Recommender) Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error) {
	metric, err := domain.ParseMetric(string(req.Metric), r.defaultMetric)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = r.defaultTopN
	}
	items := dedupe(req.Items)

	if len(items) > 0 {
		if rules, err := r.loadRules(); err == nil {
			if skus := RankConsequents(rules, items, metric, topN); len(skus) > 0 {
				products, err := r.productsInOrder(ctx, skus)
				if err != nil {
					return nil, err
				}
				if len(products) > 0 {
					return r.served(products, domain.SourceRules), nil
				}
			}
			r.log.Debug().Strs("items", items).Msg("no rule matched, using fallback")
		}
	}

	return r.fallback(ctx, items, topN)
}

// RecommendForCart recommends products for the contents of a customer's cart.
// A customer without a cart, or with an empty one, gets the popular fallback.
func (r *Recommender) RecommendForCart(ctx context.Context, customerID uint, metric domain.RankingMetric, topN int) (*domain.RecommendationResult, error) {
	cart, err := r.customers.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = r.placements[PlacementCart]
	}
	return r.Recommend(ctx, domain.RecommendationRequest{
		Items:  cart.SKUs(),
		Metric: metric,
		TopN:   topN,
	})
}

// RankConsequents matches each item against the whole rule table on its own, takes the consequents of the
// item's topN best rules by metric, and merges them in item order then rule rank.
// Input items are removed and the merged list is cut to topN.
func RankConsequents(rules []domain.AssociationRule, items []string, metric domain.RankingMetric, topN int) []string {
	exclude := make(map[string]struct{}, len(items))
	for _, item := range items {
		exclude[item] = struct{}{}
	}

	seen := map[string]struct{}{}
	var merged []string
	for _, item := range items {
		var matched []*domain.AssociationRule
		for i := range rules {
			if rules[i].HasAntecedent(item) {
				matched = append(matched, &rules[i])
			}
		}
		sort.SliceStable(matched, func(a, b int) bool {
			return matched[a].Score(metric) > matched[b].Score(metric)
		})
		if len(matched) > topN {
			matched = matched[:topN]
		}

		for _, rule := range matched {
			for _, sku := range rule.Consequents {
				if _, skip := exclude[sku]; skip {
					continue
				}
				if _, dup := seen[sku]; dup {
					continue
				}
				seen[sku] = struct{}{}
				merged = append(merged, sku)
			}
		}
	}

	if len(merged) > topN {
		merged = merged[:topN]
	}
	return merged
}

// productsInOrder loads the active products for skus, keeping the order of skus
func (r *Recommender) productsInOrder(ctx context.Context, skus []string) ([]domain.Product, error) {
	found, err := r.products.Find(ctx, domain.ProductFilter{SKUs: skus, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("load recommended products: %w", err)
	}
	bySKU := make(map[string]domain.Product, len(found))
	for _, p := range found {
		bySKU[p.SKU] = p
	}
	ordered := make([]domain.Product, 0, len(found))
	for _, sku := range skus {
		if p, ok := bySKU[sku]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// fallback recommends from the items' categories, then from the globally popular products
func (r *Recommender) fallback(ctx context.Context, items []string, topN int) (*domain.RecommendationResult, error) {
	if len(items) > 0 {
		inputs, err := r.products.Find(ctx, domain.ProductFilter{SKUs: items})
		if err != nil {
			return nil, fmt.Errorf("load input products: %w", err)
		}
		categoryIDs := categoriesOf(inputs)
		if len(categoryIDs) > 0 {
			related, err := r.products.Find(ctx, domain.ProductFilter{
				CategoryIDs:   categoryIDs,
				ExcludeSKUs:   items,
				ActiveOnly:    true,
				OrderByRating: true,
				Limit:         topN,
			})
			if err != nil {
				return nil, fmt.Errorf("load category fallback: %w", err)
			}
			if len(related) > 0 {
				return r.served(related, domain.SourceCategory), nil
			}
		}
	}

	popular, err := r.products.Find(ctx, domain.ProductFilter{
		ExcludeSKUs:   items,
		ActiveOnly:    true,
		InStockOnly:   true,
		OrderByRating: true,
		Limit:         topN,
	})
	if err != nil {
		return nil, fmt.Errorf("load popular fallback: %w", err)
	}
	return r.served(popular, domain.SourcePopular), nil
}

func (r *Recommender) served(products []domain.Product, source domain.RecommendationSource) *domain.RecommendationResult {
	r.metrics.RecommendationServed(string(source))
	return &domain.RecommendationResult{Products: products, Source: source}
}

func categoriesOf(products []domain.Product) []uint {
	seen := map[uint]struct{}{}
	var ids []uint
	for _, p := range products {
		if p.CategoryID == 0 {
			continue
		}
		if _, ok := seen[p.CategoryID]; ok {
			continue
		}
		seen[p.CategoryID] = struct{}{}
		ids = append(ids, p.CategoryID)
	}
	return ids
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
