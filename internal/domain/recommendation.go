package domain

import (
	"fmt"
	"strings"
)

// RankingMetric names the association-rule strength metric used for ranking
type RankingMetric string

const (
	MetricConfidence RankingMetric = "confidence"
	MetricLift       RankingMetric = "lift"
	MetricSupport    RankingMetric = "support"
)

// ParseMetric validates a metric name. An empty name yields the fallback metric.
func ParseMetric(name string, fallback RankingMetric) (RankingMetric, error) {
	switch RankingMetric(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return fallback, nil
	case MetricConfidence:
		return MetricConfidence, nil
	case MetricLift:
		return MetricLift, nil
	case MetricSupport:
		return MetricSupport, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMetric, name)
}

// AssociationRule is one antecedent => consequent rule mined from transactions
type AssociationRule struct {
	Antecedents []string `json:"antecedents"`
	Consequents []string `json:"consequents"`
	Confidence  float64  `json:"confidence"`
	Lift        float64  `json:"lift"`
	Support     float64  `json:"support"`
}

// Score returns the rule's value for the given metric
func (r *AssociationRule) Score(metric RankingMetric) float64 {
	switch metric {
	case MetricLift:
		return r.Lift
	case MetricSupport:
		return r.Support
	default:
		return r.Confidence
	}
}

// HasAntecedent reports whether sku is part of the rule's antecedent set
func (r *AssociationRule) HasAntecedent(sku string) bool {
	for _, a := range r.Antecedents {
		if a == sku {
			return true
		}
	}
	return false
}

// RecommendationSource records which strategy produced a recommendation list
type RecommendationSource string

const (
	SourceRules    RecommendationSource = "rules"
	SourceCategory RecommendationSource = "category"
	SourcePopular  RecommendationSource = "popular"
)

// RecommendationRequest asks for up to TopN items related to Items
type RecommendationRequest struct {
	Items  []string
	Metric RankingMetric
	TopN   int
}

// RecommendationResult is the ranked product list and the strategy that produced it
type RecommendationResult struct {
	Products []Product            `json:"products"`
	Source   RecommendationSource `json:"source"`
}

// SKUs returns the SKUs of the recommended products in order
func (r *RecommendationResult) SKUs() []string {
	skus := make([]string, 0, len(r.Products))
	for _, p := range r.Products {
		skus = append(skus, p.SKU)
	}
	return skus
}

// Entities are the catalog mentions recognized in free text
type Entities struct {
	Products   map[string]struct{}
	Brands     map[string]struct{}
	Categories map[string]struct{}
}

// NewEntities returns an empty entity set
func NewEntities() Entities {
	return Entities{
		Products:   map[string]struct{}{},
		Brands:     map[string]struct{}{},
		Categories: map[string]struct{}{},
	}
}

// Empty reports whether no entity of any kind was recognized
func (e Entities) Empty() bool {
	return len(e.Products) == 0 && len(e.Brands) == 0 && len(e.Categories) == 0
}
